package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"quiz-stats-service/internal/domain"
	"quiz-stats-service/internal/grading"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewReportCmd aggregates an exported set of participations offline.
func NewReportCmd() *cobra.Command {
	var quizPath, submissionsPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute quiz statistics from a quiz file and exported submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), quizPath, submissionsPath)
		},
	}
	cmd.Flags().StringVar(&quizPath, "quiz", "", "quiz definition (YAML or JSON)")
	cmd.Flags().StringVar(&submissionsPath, "submissions", "", "JSON array of participations")
	_ = cmd.MarkFlagRequired("quiz")
	_ = cmd.MarkFlagRequired("submissions")
	return cmd
}

func runReport(out io.Writer, quizPath, submissionsPath string) error {
	quiz, err := readQuizFile(quizPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(submissionsPath)
	if err != nil {
		return err
	}
	var records []domain.Participation
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parse %s: %w", submissionsPath, err)
	}

	stats := domain.QuizStats{
		Quiz:            quiz.Header(),
		AggregateReport: grading.Aggregate(quiz, records),
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

// readQuizFile accepts YAML, which also covers JSON documents.
func readQuizFile(path string) (domain.Quiz, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Quiz{}, err
	}
	var quiz domain.Quiz
	if err := yaml.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}
