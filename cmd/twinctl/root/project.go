package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/projection"
	"github.com/jengzang/healthtwin-backend/internal/simulate"
	"github.com/jengzang/healthtwin-backend/internal/ui"
)

func newProjectCmd() *cobra.Command {
	var f runFlags
	var years int
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print the health projection for a simulated history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.validate(); err != nil {
				return err
			}
			if years < 0 || years > 100 {
				return fmt.Errorf("years must be between 0 and 100")
			}
			res, err := simulate.Run(simulate.Config{
				Goal:        models.Goal(f.goal),
				Plan:        models.Plan(f.plan),
				Age:         f.age,
				Days:        f.days,
				Seed:        f.seed,
				Probability: f.probability,
			})
			if err != nil {
				return err
			}

			p := projection.Project(engine.ProjectionInput(res.State), years)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Title.Render(fmt.Sprintf("Projection %d years ahead (age %d → %d)", p.Years, p.CurrentAge, p.FutureAge)))
			fmt.Fprintln(out, ui.LabelValue("Score", fmt.Sprintf("%s → %s", ui.Score(p.CurrentScore), ui.Score(p.ProjectedScore))))
			fmt.Fprintln(out, ui.LabelValue("Trend", ui.Trend(p.Trend)))
			fmt.Fprintln(out, ui.LabelValue("Risk", p.RiskLevel))
			fmt.Fprintln(out, ui.LabelValue("Body state", p.BodyState))
			fmt.Fprintln(out, ui.LabelValue("Lifespan estimate", fmt.Sprintf("%.1f", p.EstimatedLifespan)))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Vitals"))
			for _, name := range models.AllVitals {
				v := p.Vitals.Get(name)
				fmt.Fprintf(out, "  %-16s %s %5.1f\n", name, ui.Bar(v, 20), v)
			}
			if len(p.RiskFactors) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render("Risk factors"))
				for _, r := range p.RiskFactors {
					fmt.Fprintf(out, "  - %s %s\n", r.Label, ui.Muted.Render(fmt.Sprintf("(%s, -%.0f)", r.Impact, r.Deduction)))
				}
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.Muted.Render(p.Summary))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVarP(&years, "years", "y", 5, "years to project")
	return cmd
}
