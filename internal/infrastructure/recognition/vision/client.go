package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"

	"github.com/kirillkom/pension-intake/internal/infrastructure/resilience"
)

const textDetection = "TEXT_DETECTION"

type Options struct {
	// RequestsPerSecond caps annotate calls; zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// ClientOptions are passed to the generated client, e.g. credentials or endpoint.
	ClientOptions      []option.ClientOption
	ResilienceExecutor *resilience.Executor
}

// Client detects text through the Cloud Vision images:annotate endpoint.
type Client struct {
	service  *visionapi.Service
	limiter  *rate.Limiter
	executor *resilience.Executor
}

func New(ctx context.Context, options Options) (*Client, error) {
	service, err := visionapi.NewService(ctx, options.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}

	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		burst := options.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	}

	return &Client{
		service:  service,
		limiter:  limiter,
		executor: options.ResilienceExecutor,
	}, nil
}

// DetectText returns the text annotations for the image at imagePath. The first
// entry is the full-page text; the rest are individual words.
func (c *Client) DetectText(ctx context.Context, imagePath string) ([]string, error) {
	content, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	var annotations []string
	call := func(callCtx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(callCtx); err != nil {
				return err
			}
		}
		out, err := c.annotate(callCtx, content)
		if err != nil {
			return err
		}
		annotations = out
		return nil
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "vision.annotate", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, resilience.WrapTemporary("vision annotate", err, classifyVisionError)
	}
	return annotations, nil
}

func (c *Client) annotate(ctx context.Context, content []byte) ([]string, error) {
	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image:    &visionapi.Image{Content: base64.StdEncoding.EncodeToString(content)},
			Features: []*visionapi.Feature{{Type: textDetection}},
		}},
	}

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, errors.New("vision annotate: empty response")
	}

	result := resp.Responses[0]
	if result.Error != nil && result.Error.Code != 0 {
		return nil, &AnnotateError{Code: result.Error.Code, Message: result.Error.Message}
	}

	annotations := make([]string, 0, len(result.TextAnnotations))
	for _, annotation := range result.TextAnnotations {
		if annotation == nil {
			continue
		}
		annotations = append(annotations, annotation.Description)
	}
	return annotations, nil
}
