package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dwe-corp/facial-auth/internal/config"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [image files...]",
	Short: "Enroll face images for a user",
	Long: `Enroll one or more face images for a user registered in the
authentication service. Images can be given as file arguments or taken from
a directory with --dir.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("user", 0, "User id in the authentication service (required)")
	enrollCmd.Flags().String("dir", "", "Enroll every image found in a directory")
	_ = enrollCmd.MarkFlagRequired("user")
}

// isImageFile matches the raster formats the enrollment pipeline accepts.
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// collectImagePaths merges file arguments with the contents of --dir.
func collectImagePaths(args []string, dir string) ([]string, error) {
	paths := append([]string{}, args...)
	if dir == "" {
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func readImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	userID := mustGetInt(cmd, "user")

	paths, err := collectImagePaths(args, mustGetString(cmd, "dir"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no image files given; pass files or --dir")
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	enrolled := 0
	var failures []string
	for _, path := range paths {
		img, err := readImageFile(path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			_ = bar.Add(1)
			continue
		}

		if _, err := svc.Enroll(ctx, img, userID); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			_ = bar.Add(1)
			continue
		}

		enrolled++
		_ = bar.Add(1)
	}
	fmt.Println()

	for _, f := range failures {
		fmt.Printf("Skipped %s\n", f)
	}
	fmt.Printf("Enrolled %d of %d image(s) for user %d\n", enrolled, len(paths), userID)

	if enrolled == 0 {
		return errors.New("no images could be enrolled")
	}
	return nil
}
