package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// ImageOptions are the optional parameters shared by the image
// operations. Fields that an operation does not accept are ignored.
type ImageOptions struct {
	Model          string
	N              int
	Quality        string
	ResponseFormat string
	Size           string
	Style          string
	User           string
	Background     string
	OutputFormat   string
}

// Image response formats.
const (
	ImageFormatURL     = "url"
	ImageFormatB64JSON = "b64_json"
)

func (o *ImageOptions) validate() error {
	if o == nil {
		return nil
	}
	switch o.ResponseFormat {
	case "", ImageFormatURL, ImageFormatB64JSON:
		return nil
	}
	return configErrorf("invalid image response format %q", o.ResponseFormat)
}

type imageGenerateWire struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model,omitzero"`
	N              int    `json:"n,omitzero"`
	Quality        string `json:"quality,omitzero"`
	ResponseFormat string `json:"response_format,omitzero"`
	Size           string `json:"size,omitzero"`
	Style          string `json:"style,omitzero"`
	User           string `json:"user,omitzero"`
	Background     string `json:"background,omitzero"`
	OutputFormat   string `json:"output_format,omitzero"`
}

// ImageInput is an image file sent as multipart data.
type ImageInput struct {
	Reader   io.Reader
	Filename string
}

func (in *ImageInput) part(field string) (formPart, error) {
	if in == nil || in.Reader == nil {
		return formPart{}, configErrorf("%s is required", field)
	}
	name := in.Filename
	if name == "" {
		name = field + ".png"
	}
	mime, err := imageMIMEType(name)
	if err != nil {
		mime = "image/png"
	}
	return fileField(field, in.Reader, name, mime), nil
}

// Image is one generated image.
type Image struct {
	URL           string `json:"url,omitzero"`
	B64JSON       string `json:"b64_json,omitzero"`
	RevisedPrompt string `json:"revised_prompt,omitzero"`
}

// Bytes decodes the base64 payload.
func (i *Image) Bytes() ([]byte, error) {
	if i.B64JSON == "" {
		return nil, &CodecError{Op: "decode image", Err: fmt.Errorf("image has no b64_json payload")}
	}
	b, err := base64.StdEncoding.DecodeString(i.B64JSON)
	if err != nil {
		return nil, &CodecError{Op: "decode image", Err: err}
	}
	return b, nil
}

// ImageResponse is the result of every image operation.
type ImageResponse struct {
	Created int64    `json:"created"`
	Data    []*Image `json:"data"`
	Usage   *Usage   `json:"usage,omitzero"`
}

// ImagesService generates and edits images.
type ImagesService struct {
	client *Client
}

func newImagesService(client *Client) *ImagesService {
	return &ImagesService{client: client}
}

// Generate creates images from a prompt.
func (s *ImagesService) Generate(ctx context.Context, prompt string, opts *ImageOptions) (*ImageResponse, error) {
	if prompt == "" {
		return nil, configErrorf("image prompt is required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	body := &imageGenerateWire{Prompt: prompt}
	if opts != nil {
		body.Model = opts.Model
		body.N = opts.N
		body.Quality = opts.Quality
		body.ResponseFormat = opts.ResponseFormat
		body.Size = opts.Size
		body.Style = opts.Style
		body.User = opts.User
		body.Background = opts.Background
		body.OutputFormat = opts.OutputFormat
	}
	return s.send(ctx, &request{
		op:     "images.generate",
		method: http.MethodPost,
		path:   "images/generations",
		body:   body,
	})
}

// Edit edits image according to prompt. mask is optional.
func (s *ImagesService) Edit(ctx context.Context, image *ImageInput, prompt string, mask *ImageInput, opts *ImageOptions) (*ImageResponse, error) {
	if prompt == "" {
		return nil, configErrorf("image prompt is required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	img, err := image.part("image")
	if err != nil {
		return nil, err
	}
	form := []formPart{img, textField("prompt", prompt)}
	if mask != nil {
		m, err := mask.part("mask")
		if err != nil {
			return nil, err
		}
		form = append(form, m)
	}
	form = append(form, opts.fields()...)
	return s.send(ctx, &request{
		op:     "images.edit",
		method: http.MethodPost,
		path:   "images/edits",
		form:   form,
	})
}

// Variation creates variations of image. Only dall-e-2 supports it.
func (s *ImagesService) Variation(ctx context.Context, image *ImageInput, opts *ImageOptions) (*ImageResponse, error) {
	if opts != nil && opts.Model != "" && opts.Model != ModelDALLE2 {
		return nil, configErrorf("image variations require %s, got %q", ModelDALLE2, opts.Model)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	img, err := image.part("image")
	if err != nil {
		return nil, err
	}
	form := append([]formPart{img}, opts.fields()...)
	return s.send(ctx, &request{
		op:     "images.variation",
		method: http.MethodPost,
		path:   "images/variations",
		form:   form,
	})
}

// fields renders the multipart subset of o. Style is JSON-only.
func (o *ImageOptions) fields() []formPart {
	if o == nil {
		return nil
	}
	var out []formPart
	add := func(name, v string) {
		if v != "" {
			out = append(out, textField(name, v))
		}
	}
	add("model", o.Model)
	if o.N > 0 {
		add("n", strconv.Itoa(o.N))
	}
	add("quality", o.Quality)
	add("response_format", o.ResponseFormat)
	add("size", o.Size)
	add("user", o.User)
	add("background", o.Background)
	add("output_format", o.OutputFormat)
	return out
}

func (s *ImagesService) send(ctx context.Context, r *request) (*ImageResponse, error) {
	var resp ImageResponse
	if err := s.client.http.doJSON(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
