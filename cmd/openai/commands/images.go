package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Image generation and editing",
	Long: `Generate, edit and vary images.

Base64 results are written to -o, or to ~/.openai-tools/openai/data/ when
-o is not given. URL results are printed.`,
}

func imageOptions(cmd *cobra.Command) (*openai.ImageOptions, error) {
	opts := &openai.ImageOptions{}
	for flag, dst := range map[string]*string{
		"model":           &opts.Model,
		"size":            &opts.Size,
		"quality":         &opts.Quality,
		"style":           &opts.Style,
		"response-format": &opts.ResponseFormat,
		"output-format":   &opts.OutputFormat,
		"background":      &opts.Background,
	} {
		v, err := cmd.Flags().GetString(flag)
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s' flag: %w", flag, err)
		}
		*dst = v
	}
	n, err := cmd.Flags().GetInt("n")
	if err != nil {
		return nil, fmt.Errorf("failed to read 'n' flag: %w", err)
	}
	opts.N = n
	return opts, nil
}

// imagePaths names the files for n decoded images. A single image goes to
// -o as given; several get an index before the extension.
func imagePaths(n int, ext string) ([]string, error) {
	base := outputFile
	if base == "" {
		paths, err := cli.NewPaths(appName)
		if err != nil {
			return nil, err
		}
		base, err = paths.ArtifactPath("image", ext, time.Now())
		if err != nil {
			return nil, err
		}
	}
	if n == 1 {
		return []string{base}, nil
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d%s", stem, i+1, filepath.Ext(base))
	}
	return out, nil
}

// emitImages saves base64 images and prints URLs. With --json the raw
// response is printed instead.
func emitImages(resp *openai.ImageResponse, ext string) error {
	if outputJSON {
		return cli.Output(resp, cli.OutputOptions{Format: cli.FormatJSON})
	}
	var encoded []*openai.Image
	for _, img := range resp.Data {
		if img.URL != "" {
			fmt.Println(img.URL)
		}
		if img.B64JSON != "" {
			encoded = append(encoded, img)
		}
		if img.RevisedPrompt != "" {
			printVerbose("Revised prompt: %s", img.RevisedPrompt)
		}
	}
	if len(encoded) == 0 {
		return nil
	}
	paths, err := imagePaths(len(encoded), ext)
	if err != nil {
		return err
	}
	for i, img := range encoded {
		data, err := img.Bytes()
		if err != nil {
			return err
		}
		if err := cli.OutputBytes(data, paths[i]); err != nil {
			return err
		}
		cli.PrintSuccess("Saved %s to %s", cli.FormatBytesInt(len(data)), paths[i])
	}
	return nil
}

func imageExt(opts *openai.ImageOptions) string {
	if opts.OutputFormat != "" {
		return opts.OutputFormat
	}
	return "png"
}

func openImage(path string) (*openai.ImageInput, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	return &openai.ImageInput{Reader: f, Filename: filepath.Base(path)}, func() { f.Close() }, nil
}

var imagesGenerateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate images from a prompt",
	Long: `Generate images from a prompt.

Examples:
  openai images generate "a lighthouse at dusk, watercolor" -o lighthouse.png
  openai images generate --model dall-e-3 --response-format url "a red fox"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := imageOptions(cmd)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Images.Generate(cmd.Context(), strings.Join(args, " "), opts)
		if err != nil {
			return fmt.Errorf("generate image failed: %w", err)
		}
		return emitImages(resp, imageExt(opts))
	},
}

var imagesEditCmd = &cobra.Command{
	Use:   "edit <image> <prompt>",
	Short: "Edit an image",
	Long: `Edit an image, optionally restricted to the transparent area of a mask.

Examples:
  openai images edit room.png "add a plant in the corner" --mask mask.png -o edited.png`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := imageOptions(cmd)
		if err != nil {
			return err
		}
		maskPath, err := cmd.Flags().GetString("mask")
		if err != nil {
			return fmt.Errorf("failed to read 'mask' flag: %w", err)
		}

		image, closeImage, err := openImage(args[0])
		if err != nil {
			return err
		}
		defer closeImage()
		var mask *openai.ImageInput
		if maskPath != "" {
			m, closeMask, err := openImage(maskPath)
			if err != nil {
				return err
			}
			defer closeMask()
			mask = m
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Images.Edit(cmd.Context(), image, strings.Join(args[1:], " "), mask, opts)
		if err != nil {
			return fmt.Errorf("edit image failed: %w", err)
		}
		return emitImages(resp, imageExt(opts))
	},
}

var imagesVariationCmd = &cobra.Command{
	Use:   "variation <image>",
	Short: "Create variations of an image (dall-e-2)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := imageOptions(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("model") {
			opts.Model = openai.ModelDALLE2
		}
		image, closeImage, err := openImage(args[0])
		if err != nil {
			return err
		}
		defer closeImage()

		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Images.Variation(cmd.Context(), image, opts)
		if err != nil {
			return fmt.Errorf("image variation failed: %w", err)
		}
		return emitImages(resp, imageExt(opts))
	},
}

func init() {
	for _, c := range []*cobra.Command{imagesGenerateCmd, imagesEditCmd, imagesVariationCmd} {
		c.Flags().String("model", openai.ModelGPTImage1, "Image model")
		c.Flags().String("size", "", "Image size, e.g. 1024x1024")
		c.Flags().String("quality", "", "Quality: low, medium, high, standard or hd")
		c.Flags().String("style", "", "Style (dall-e-3): vivid or natural")
		c.Flags().String("response-format", "", "url or b64_json (dall-e models)")
		c.Flags().String("output-format", "", "png, jpeg or webp (gpt-image-1)")
		c.Flags().String("background", "", "transparent, opaque or auto (gpt-image-1)")
		c.Flags().Int("n", 0, "Number of images")
	}
	imagesEditCmd.Flags().String("mask", "", "Mask image; transparent pixels mark the area to edit")

	imagesCmd.AddCommand(imagesGenerateCmd)
	imagesCmd.AddCommand(imagesEditCmd)
	imagesCmd.AddCommand(imagesVariationCmd)
}
