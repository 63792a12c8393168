package support

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/topacc/internal/testutil"
	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"
)

// shadeStep separates the red intensities of consecutive images.
const shadeStep = 24

func (testCtx *TestContext) aMappingTableWithIDs(table *godog.Table) error {
	var b strings.Builder
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("mapping row %d: want offset and id columns", i)
		}
		offset, id := row.Cells[0].Value, row.Cells[1].Value
		fmt.Fprintf(&b, "train.zip@/n%s/n%s_%d.JPEG\t%s\n", id, id, 1000+i, offset)
	}
	testCtx.MapPath = filepath.Join(testCtx.TempDir, "train_map.txt")
	return os.WriteFile(testCtx.MapPath, []byte(b.String()), 0o600)
}

func (testCtx *TestContext) aLexiconWithTerms(table *godog.Table) error {
	lines := make([]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 3 {
			return fmt.Errorf("lexicon row %d: want id, term and synonym columns", i)
		}
		lines = append(lines, testutil.LexiconLine(row.Cells[0].Value, 10, row.Cells[1].Value, row.Cells[2].Value))
	}
	testCtx.LexPath = filepath.Join(testCtx.TempDir, "wordnet.txt")
	return os.WriteFile(testCtx.LexPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}

func (testCtx *TestContext) anImageRankedAs(name, ranking string) error {
	offsets, err := parseOffsets(ranking)
	if err != nil {
		return err
	}
	testCtx.nextShade += shadeStep
	if testCtx.nextShade > 255 {
		return fmt.Errorf("too many images in one scenario")
	}
	shade := testCtx.nextShade

	img := testutil.CreateTestImage(16, 12, color.NRGBA{R: uint8(shade), G: 40, B: 40, A: 255})
	if err := imaging.Save(img, filepath.Join(testCtx.ImageDir, name), imaging.JPEGQuality(100)); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	testCtx.classifier.register(shade, offsets)
	return nil
}

func (testCtx *TestContext) anUnreadableImage(name string) error {
	return os.WriteFile(filepath.Join(testCtx.ImageDir, name), []byte("not a jpeg"), 0o600)
}

func (testCtx *TestContext) anUnrelatedFile(name string) error {
	return os.WriteFile(filepath.Join(testCtx.ImageDir, name), []byte("ignored"), 0o600)
}

// RegisterDataSteps registers the steps that build the scenario inputs.
func (testCtx *TestContext) RegisterDataSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a mapping table:$`, testCtx.aMappingTableWithIDs)
	sc.Step(`^a lexical database:$`, testCtx.aLexiconWithTerms)
	sc.Step(`^an image "([^"]*)" ranked as "([^"]*)"$`, testCtx.anImageRankedAs)
	sc.Step(`^an unreadable image "([^"]*)"$`, testCtx.anUnreadableImage)
	sc.Step(`^an unrelated file "([^"]*)"$`, testCtx.anUnrelatedFile)
}
