package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var coursesJSON bool

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List courses known to the material store",
	RunE:  runCourses,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesJSON, "json", false, "output courses as JSON")
	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	courses, err := contextService.Courses(context.Background())
	if err != nil {
		return fmt.Errorf("listing courses failed: %w", err)
	}

	if coursesJSON {
		data, err := json.MarshalIndent(courses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal courses: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(courses) == 0 {
		cmd.Println("No courses found.")
		return nil
	}

	cmd.Println("Courses:")
	for _, c := range courses {
		status := "not indexed"
		if c.Indexed {
			status = "indexed"
		}
		cmd.Printf("  %s  (%d materials, %s)\n", c.CourseID, c.Materials, status)
	}
	return nil
}
