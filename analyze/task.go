// Package analyze runs road images through the remote pothole
// classifier. The classifier is an opaque scoring oracle; this package
// performs one request per image with no retry and no caching of a
// prior verdict for a different image.
package analyze

import (
	"context"
	"log/slog"

	"github.com/ompisal63/smart-pothole-system/api"
)

// Classifier scores one image. The api client satisfies this.
type Classifier interface {
	Predict(ctx context.Context, imagePath string) (api.Verdict, error)
}

// Task is a single-shot image analysis request. Any failure is
// returned to the caller, who stays free to retry manually.
type Task struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewTask creates an analysis task over the given classifier.
func NewTask(classifier Classifier, logger *slog.Logger) *Task {
	if logger == nil {
		logger = slog.Default()
	}
	return &Task{classifier: classifier, logger: logger}
}

// Run uploads the image and awaits the classification verdict.
func (t *Task) Run(ctx context.Context, imagePath string) (api.Verdict, error) {
	verdict, err := t.classifier.Predict(ctx, imagePath)
	if err != nil {
		t.logger.Debug("Image analysis failed", "image", imagePath, "error", err)
		return api.Verdict{}, err
	}

	t.logger.Debug("Image analyzed",
		"image", imagePath,
		"is_pothole", verdict.IsPothole,
		"confidence", verdict.Confidence)
	return verdict, nil
}
