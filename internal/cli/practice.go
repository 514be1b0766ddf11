package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/frankyzip/moduspractica/internal/retention"
	"github.com/frankyzip/moduspractica/internal/store"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List practice sessions due today",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		due := eng.DueToday()
		if len(due) == 0 {
			fmt.Println("nothing due today")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tPIECE\tBARS\tMINUTES\tDIFFICULTY")
		for _, s := range due {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				s.ID[:8], s.PieceTitle, s.BarRange, s.EstimatedDuration, s.Difficulty)
		}
		return w.Flush()
	},
}

var piecesCmd = &cobra.Command{
	Use:   "pieces",
	Short: "List the piece library",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		pieces, err := eng.DB.ListPieces()
		if err != nil {
			return err
		}

		now := time.Now()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCOMPOSER\tSECTIONS\tPAUSED")
		for i := range pieces {
			p := &pieces[i]
			sections, err := eng.DB.ListSections(p.ID)
			if err != nil {
				return err
			}
			paused := "-"
			if p.CurrentlyPaused(now) {
				paused = "until " + p.PauseUntil.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID[:8], p.Title, p.Composer, len(sections), paused)
		}
		return w.Flush()
	},
}

var (
	addPieceTitle    string
	addPieceComposer string
)

var addPieceCmd = &cobra.Command{
	Use:   "add-piece",
	Short: "Add a piece to the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addPieceTitle == "" {
			return fmt.Errorf("--title is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		p := &store.Piece{Title: addPieceTitle, Composer: addPieceComposer}
		if err := eng.DB.CreatePiece(p); err != nil {
			return err
		}
		fmt.Printf("added piece %s\n", p.ID)
		return nil
	},
}

var (
	addSectionPiece  string
	addSectionBars   string
	addSectionDesc   string
	addSectionTarget int
)

var addSectionCmd = &cobra.Command{
	Use:   "add-section",
	Short: "Add a bar section to a piece and schedule its first session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addSectionPiece == "" || addSectionBars == "" {
			return fmt.Errorf("--piece and --bars are required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sec := &store.Section{
			PieceID:     addSectionPiece,
			BarRange:    addSectionBars,
			Description: addSectionDesc,
			TargetReps:  addSectionTarget,
		}
		if err := eng.DB.CreateSection(sec); err != nil {
			return err
		}
		first, err := eng.OnboardSection(addSectionPiece, sec.ID)
		if err != nil {
			return err
		}
		fmt.Printf("added section %s, first session due %s\n",
			sec.ID, first.ScheduledDate.Format("2006-01-02"))
		return nil
	},
}

var (
	completeDifficulty string
	completeQuality    string
	completeNotes      string
	completeMinutes    int
)

var completeCmd = &cobra.Command{
	Use:   "complete <session-id>",
	Short: "Record the outcome of a practiced session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		var fb retention.Feedback
		fb.Difficulty.UnmarshalText([]byte(completeDifficulty))
		fb.Quality.UnmarshalText([]byte(completeQuality))
		fb.Notes = completeNotes

		next, err := eng.RecordOutcome(args[0], fb, completeMinutes)
		if err != nil {
			return err
		}
		fmt.Printf("recorded; next session due %s (tau %.1f days)\n",
			next.ScheduledDate.Format("2006-01-02"), next.Tau)
		return nil
	},
}

var pauseUntil string

var pauseCmd = &cobra.Command{
	Use:   "pause <piece-id>",
	Short: "Pause a piece and cancel its pending sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		until, err := time.Parse("2006-01-02", pauseUntil)
		if err != nil {
			return fmt.Errorf("--until must be YYYY-MM-DD: %w", err)
		}
		if !until.After(time.Now()) {
			return fmt.Errorf("--until must be in the future")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := eng.PausePiece(args[0], until); err != nil {
			return err
		}
		fmt.Printf("paused until %s\n", until.Format("2006-01-02"))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <piece-id>",
	Short: "Resume a paused piece",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		return eng.ResumePiece(args[0])
	},
}

func init() {
	addPieceCmd.Flags().StringVar(&addPieceTitle, "title", "", "piece title")
	addPieceCmd.Flags().StringVar(&addPieceComposer, "composer", "", "composer")

	addSectionCmd.Flags().StringVar(&addSectionPiece, "piece", "", "piece id")
	addSectionCmd.Flags().StringVar(&addSectionBars, "bars", "", "bar range, e.g. 1-8")
	addSectionCmd.Flags().StringVar(&addSectionDesc, "desc", "", "description")
	addSectionCmd.Flags().IntVar(&addSectionTarget, "target", 4, "target repetitions (1-12)")

	completeCmd.Flags().StringVar(&completeDifficulty, "difficulty", "Moderate", "VeryEasy|Easy|Moderate|Hard|VeryHard")
	completeCmd.Flags().StringVar(&completeQuality, "quality", "Good", "Excellent|Good|Okay|Poor")
	completeCmd.Flags().StringVar(&completeNotes, "notes", "", "free-form notes")
	completeCmd.Flags().IntVar(&completeMinutes, "minutes", 10, "practiced minutes")

	pauseCmd.Flags().StringVar(&pauseUntil, "until", "", "pause until date, YYYY-MM-DD")
	pauseCmd.MarkFlagRequired("until")
}
