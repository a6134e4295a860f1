package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/magenta-aps/raclients"
	"github.com/magenta-aps/raclients/internal/logging"
	"github.com/magenta-aps/raclients/internal/progress"
	"github.com/magenta-aps/raclients/pkg/modelclient"
)

var moCmd = &cobra.Command{
	Use:   "mo <file.yaml>",
	Short: "Upload model objects to OS2mo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		edit, _ := cmd.Flags().GetBool("edit")

		docs, err := readFile(args[0])
		if err != nil {
			return err
		}
		objs := make([]modelclient.Model, 0, len(docs))
		for _, doc := range docs {
			obj, err := decodeMO(doc)
			if err != nil {
				return err
			}
			objs = append(objs, obj)
		}

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			reportDryRun(cmd, objs)
			return nil
		}

		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}

		levelName, _ := cmd.Flags().GetString("log-level")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")

		uploadOpts := []modelclient.Option{modelclient.WithForce(force)}
		if chunkSize > 0 {
			uploadOpts = append(uploadOpts, modelclient.WithChunkSize(chunkSize))
		}
		if term.IsTerminal(int(os.Stderr.Fd())) {
			uploadOpts = append(uploadOpts, modelclient.WithProgress(progress.New(os.Stderr)))
		}

		client, err := raclients.NewMOClient(cmd.Context(), cfg,
			raclients.WithLogger(logging.New(logging.ParseLevel(levelName))),
			raclients.WithUploadOptions(uploadOpts...),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.WaitUntilReady(cmd.Context()); err != nil {
			return err
		}

		var results []modelclient.Result
		if edit {
			results, err = client.Edit(cmd.Context(), objs)
		} else {
			results, err = client.Upload(cmd.Context(), objs)
		}
		if err != nil {
			return fmt.Errorf("uploaded %d of %d objects: %w", len(results), len(objs), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d objects\n", len(results))
		return nil
	},
}

func reportDryRun(cmd *cobra.Command, objs []modelclient.Model) {
	counts := make(map[string]int)
	for _, obj := range objs {
		counts[obj.Kind()]++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Would upload %d objects:\n", len(objs))
	for kind, n := range counts {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", kind, n)
	}
}

func init() {
	moCmd.Flags().Bool("force", false, "Bypass MO API validation")
	moCmd.Flags().Bool("edit", false, "Edit existing objects instead of creating")
	rootCmd.AddCommand(moCmd)
}
