package support

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/topacc/internal/labels"
	"github.com/MeKo-Tech/topacc/internal/metrics"
	"github.com/cucumber/godog"
)

func (testCtx *TestContext) workersAreUsed(n int) error {
	testCtx.Workers = n
	return nil
}

func (testCtx *TestContext) unreadableImagesAreTolerated() error {
	testCtx.Lenient = true
	return nil
}

func (testCtx *TestContext) runMetrics(id string, strict bool) error {
	resolver, err := labels.NewResolver(testCtx.MapPath, testCtx.LexPath)
	if err != nil {
		return fmt.Errorf("failed to load mapping table: %w", err)
	}

	cfg := metrics.DefaultConfig()
	cfg.ImageDir = testCtx.ImageDir
	cfg.ExpectedID = id
	cfg.Strict = strict
	cfg.Workers = testCtx.Workers
	cfg.ImageSize = imageSize
	cfg.MeanCenter = false

	runner, err := metrics.NewRunner(cfg, testCtx.classifier, resolver,
		metrics.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		metrics.ContinueOnError(testCtx.Lenient))
	if err != nil {
		return err
	}

	testCtx.LastResult, testCtx.LastError = runner.Run(context.Background())
	testCtx.LastOutput = ""
	if testCtx.LastError == nil {
		var buf bytes.Buffer
		if err := testCtx.LastResult.Write(&buf, metrics.FormatText); err != nil {
			return err
		}
		testCtx.LastOutput = buf.String()
	}
	return nil
}

func (testCtx *TestContext) iRunTheMetrics(id string) error {
	return testCtx.runMetrics(id, false)
}

func (testCtx *TestContext) iRunTheMetricsInStrictMode(id string) error {
	return testCtx.runMetrics(id, true)
}

func (testCtx *TestContext) theReportShouldRead(want string) error {
	if testCtx.LastError != nil {
		return fmt.Errorf("run failed: %w", testCtx.LastError)
	}
	if got := strings.TrimRight(testCtx.LastOutput, "\n"); got != want {
		return fmt.Errorf("expected report %q, got %q", want, got)
	}
	return nil
}

func (testCtx *TestContext) imagesShouldMatch(matched, total int) error {
	if testCtx.LastError != nil {
		return fmt.Errorf("run failed: %w", testCtx.LastError)
	}
	res := testCtx.LastResult
	if res.Matched != matched || res.Total != total {
		return fmt.Errorf("expected %d of %d images to match, got %d of %d", matched, total, res.Matched, res.Total)
	}
	return nil
}

func (testCtx *TestContext) imagesShouldHaveFailed(n int) error {
	if testCtx.LastError != nil {
		return fmt.Errorf("run failed: %w", testCtx.LastError)
	}
	if testCtx.LastResult.Failed != n {
		return fmt.Errorf("expected %d failed images, got %d", n, testCtx.LastResult.Failed)
	}
	return nil
}

func (testCtx *TestContext) theRunShouldFailWith(fragment string) error {
	if testCtx.LastError == nil {
		return errors.New("expected the run to fail")
	}
	if !strings.Contains(testCtx.LastError.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %q", fragment, testCtx.LastError.Error())
	}
	return nil
}

func (testCtx *TestContext) theRunShouldReportNoImages() error {
	if !errors.Is(testCtx.LastError, metrics.ErrNoInputImages) {
		return fmt.Errorf("expected ErrNoInputImages, got %v", testCtx.LastError)
	}
	return nil
}

// RegisterRunSteps registers the steps that execute and inspect a run.
func (testCtx *TestContext) RegisterRunSteps(sc *godog.ScenarioContext) {
	sc.Step(`^(\d+) workers are used$`, testCtx.workersAreUsed)
	sc.Step(`^unreadable images are tolerated$`, testCtx.unreadableImagesAreTolerated)
	sc.Step(`^I run the metrics for id "([^"]*)"$`, testCtx.iRunTheMetrics)
	sc.Step(`^I run the metrics for id "([^"]*)" in strict mode$`, testCtx.iRunTheMetricsInStrictMode)
	sc.Step(`^the report should read "([^"]*)"$`, testCtx.theReportShouldRead)
	sc.Step(`^(\d+) of (\d+) images should match$`, testCtx.imagesShouldMatch)
	sc.Step(`^(\d+) images should have failed$`, testCtx.imagesShouldHaveFailed)
	sc.Step(`^the run should fail with "([^"]*)"$`, testCtx.theRunShouldFailWith)
	sc.Step(`^the run should report that no images were found$`, testCtx.theRunShouldReportNoImages)
}
