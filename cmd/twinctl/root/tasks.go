package root

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/ui"
)

func newTasksCmd() *cobra.Command {
	var (
		goal, plan string
		day        int
		seed       uint64
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print the tasks generated for a goal's day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !models.Plan(plan).IsValid() {
				return fmt.Errorf("unknown plan %q", plan)
			}
			if day < 1 {
				return fmt.Errorf("day must be at least 1")
			}
			g := models.Goal(goal)
			r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			tasks := engine.GenerateTasksForDay(g, models.Plan(plan), day, r)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Title.Render(fmt.Sprintf("Day %d of %s (%s)", day, g.DisplayName(), models.Plan(plan).DisplayName())))
			for _, t := range tasks {
				fmt.Fprintf(out, "%s %s %s\n", ui.Key.Render(t.ID), t.Name,
					ui.Muted.Render(fmt.Sprintf("%s · %d xp · %d coins", t.Duration, t.XP, t.Coins)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&goal, "goal", "g", string(models.GoalGeneralFitness), "health goal")
	cmd.Flags().StringVarP(&plan, "plan", "p", string(models.PlanMedium), "plan intensity: fast, medium or slow")
	cmd.Flags().IntVarP(&day, "day", "d", 1, "plan day")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}
