package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/algotutor/internal/mastery"
	"github.com/abhisek/algotutor/internal/store"
)

var progressCmd = &cobra.Command{
	Use:   "progress <studentId>",
	Short: "Show a student's mastered topics and session count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID := args[0]

		g, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		report, err := mastery.NewService(s).Report(ctx, studentID, g)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		var sessions int
		var student *store.Student
		err = s.Do(ctx, func(tx *store.Tx) error {
			var err error
			if sessions, err = tx.SessionCount(ctx, studentID); err != nil {
				return err
			}
			student, err = tx.GetStudent(ctx, studentID)
			return err
		})
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}

		fmt.Printf("Student:   %s\n", studentID)
		if student != nil {
			fmt.Printf("Selected:  %s (%s)\n", student.Topic, student.Language)
		}
		fmt.Printf("Sessions:  %d\n\n", sessions)

		fmt.Printf("%-36s  %-9s  %s\n", "Topic", "State", "Since")
		fmt.Println(strings.Repeat("─", 70))
		var mastered int
		for _, st := range report {
			since := ""
			if !st.UpdatedAt.IsZero() {
				since = st.UpdatedAt.Local().Format("2006-01-02 15:04")
			}
			if st.State == mastery.StateMastered {
				mastered++
			}
			fmt.Printf("%-36s  %-9s  %s\n", truncate(st.Topic, 36), st.State, since)
		}
		fmt.Printf("\n%d/%d topics mastered\n", mastered, len(report))
		return nil
	},
}
