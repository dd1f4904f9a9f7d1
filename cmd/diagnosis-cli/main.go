package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/cli"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/cpj"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/imagefile"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/logging"
)

// CLI flags
var (
	imageFlag    string
	questionFlag string
	modelFlag    string
	unifiedFlag  bool
	verboseFlag  bool
)

// rootCmd is the main Cobra command for the diagnosis CLI.
var rootCmd = &cobra.Command{
	Use:   "diagnosis-cli",
	Short: "AI-powered lettuce plant-health diagnosis from a photo",
	Long: `Diagnosis CLI analyzes a photo of a lettuce plant and produces a
health diagnosis with management recommendations. The photo is captioned
under a quality gate, two question-answering calls run over the caption,
and a judge reconciles them into one final answer.

Examples:
  diagnosis-cli --image ./plant.jpg
  diagnosis-cli -i ./plant.jpg -q "why are the leaf tips brown?"
  diagnosis-cli -i ./plant.jpg --model gemini-2.5-pro
  diagnosis-cli -i ./plant.jpg --unified
  diagnosis-cli  # Interactive mode - prompts for image path`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Path to the plant photo")
	rootCmd.Flags().StringVarP(&questionFlag, "question", "q", "", "Optional question about the plant")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", gateway.DefaultModelName, "Gemini model to use")
	rootCmd.Flags().BoolVar(&unifiedFlag, "unified", false, "Use a single consolidated model call instead of the staged pipeline")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show the caption and both intermediate answers")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	godotenv.Load()
	logging.Init()

	imagePath := imageFlag
	if imagePath == "" {
		imagePath = cli.PromptForImage()
	}
	if imagePath == "" {
		log.Fatal().Msg("No image provided. Pass --image or enter a path when prompted")
	}
	imagePath = cli.ValidateAndResolveImagePath(imagePath)

	img, err := imagefile.Load(imagePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load image")
	}

	// Capture context is informational; photos without EXIF are fine.
	metadata, err := imagefile.ExtractMetadata(imagePath)
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF metadata available")
		metadata = nil
	}

	ctx, gw := cli.InitGateway(modelFlag)

	runDiagnosis(ctx, gw, img, metadata)
}

// runDiagnosis executes the pipeline and renders the result.
func runDiagnosis(ctx context.Context, gw gateway.Model, img gateway.Image, metadata *imagefile.Metadata) {
	mode := cpj.ModeStaged
	if unifiedFlag {
		mode = cpj.ModeUnified
	}

	log.Info().
		Str("model", modelFlag).
		Str("mode", string(mode)).
		Msg("Starting diagnosis")

	pipeline := &cpj.Pipeline{Gateway: gw, Mode: mode}
	result, elapsed, err := pipeline.Run(ctx, img, questionFlag)
	if err != nil {
		log.Fatal().Err(err).Dur("elapsed", elapsed).Msg("Diagnosis failed")
	}

	if verboseFlag {
		cli.PrintResultVerbose(os.Stdout, result)
	} else {
		cli.PrintResult(os.Stdout, result)
	}
	cli.PrintImageMetadata(os.Stdout, metadata)
}
