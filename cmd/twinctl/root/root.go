package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "twinctl",
	Short:         "Health Twin offline simulator",
	Long:          "twinctl runs the task engine and projection model locally, without the API server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newSimulateCmd(),
		newProjectCmd(),
		newTasksCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// runFlags are shared by commands that simulate a history first.
type runFlags struct {
	goal        string
	plan        string
	age         int
	days        int
	seed        uint64
	probability float64
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.goal, "goal", "g", string(models.GoalGeneralFitness), "health goal")
	cmd.Flags().StringVarP(&f.plan, "plan", "p", string(models.PlanMedium), "plan intensity: fast, medium or slow")
	cmd.Flags().IntVar(&f.age, "age", 30, "user age")
	cmd.Flags().IntVarP(&f.days, "days", "d", 30, "days to simulate")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&f.probability, "probability", 0.8, "chance each task is completed")
}

func (f *runFlags) validate() error {
	if !models.Goal(f.goal).IsValid() {
		return fmt.Errorf("unknown goal %q", f.goal)
	}
	if !models.Plan(f.plan).IsValid() {
		return fmt.Errorf("unknown plan %q", f.plan)
	}
	if f.days < 0 {
		return fmt.Errorf("days must not be negative")
	}
	return nil
}
