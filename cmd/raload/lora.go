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

var loraCmd = &cobra.Command{
	Use:   "lora <file.yaml>",
	Short: "Import registration objects into LoRa",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := readFile(args[0])
		if err != nil {
			return err
		}
		objs := make([]modelclient.Model, 0, len(docs))
		for _, doc := range docs {
			obj, err := decodeLoRa(doc)
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

		var uploadOpts []modelclient.Option
		if chunkSize > 0 {
			uploadOpts = append(uploadOpts, modelclient.WithChunkSize(chunkSize))
		}
		if term.IsTerminal(int(os.Stderr.Fd())) {
			uploadOpts = append(uploadOpts, modelclient.WithProgress(progress.New(os.Stderr)))
		}

		client, err := raclients.NewLoRaClient(cmd.Context(), cfg,
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

		results, err := client.Upload(cmd.Context(), objs)
		if err != nil {
			return fmt.Errorf("imported %d of %d objects: %w", len(results), len(objs), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d objects\n", len(results))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loraCmd)
}
