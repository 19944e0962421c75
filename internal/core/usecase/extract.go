package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/pension-intake/internal/core/domain"
	"github.com/kirillkom/pension-intake/internal/core/ports"
)

type ExtractTextUseCase struct {
	recognizer ports.TextRecognizer
}

func NewExtractTextUseCase(recognizer ports.TextRecognizer) *ExtractTextUseCase {
	return &ExtractTextUseCase{recognizer: recognizer}
}

// Extract returns the full-page text of one image. An image without text yields
// ErrNoTextDetected; any recognizer error yields ErrExtractionService.
func (uc *ExtractTextUseCase) Extract(ctx context.Context, img domain.InputImage) (string, error) {
	annotations, err := uc.recognizer.DetectText(ctx, img.Path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionService, "detect text", err)
	}
	if len(annotations) == 0 {
		return "", domain.WrapError(domain.ErrNoTextDetected, "detect text", fmt.Errorf("no annotations for %s", img.Name))
	}
	text := strings.TrimSpace(annotations[0])
	if text == "" {
		return "", domain.WrapError(domain.ErrNoTextDetected, "detect text", fmt.Errorf("blank annotation for %s", img.Name))
	}
	return text, nil
}
