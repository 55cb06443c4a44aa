package watcher

import (
	"strings"

	"meetsum/internal/ai"
	"meetsum/internal/model"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// writeDocx renders the same content as RenderReport into a Word document
func writeDocx(run *model.Run, title, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addRun(doc.AddParagraph(""), title, true, 16)
	addRun(doc.AddParagraph(""), reportTime(run).Format("2006-01-02 15:04"), false, fontSize)

	if run.Failure != nil {
		addRun(doc.AddParagraph(""), "Error", true, 15)
		addRun(doc.AddParagraph(""), run.Failure.Message+" ("+run.Failure.Cause+")", false, fontSize)
	}
	for _, w := range run.Warnings {
		addRun(doc.AddParagraph(""), w.Message, false, fontSize)
	}

	if run.Summary != "" {
		addRun(doc.AddParagraph(""), "Summary", true, 15)
		bullets := run.BulletPoints
		if len(bullets) == 0 {
			bullets = ai.ParseBullets(run.Summary)
		}
		for _, b := range bullets {
			addRun(doc.AddParagraph(""), "• "+b, false, fontSize)
		}
	}

	if run.Transcript != "" {
		addRun(doc.AddParagraph(""), "Transcript", true, 15)
		for _, line := range strings.Split(run.Transcript, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				addRun(doc.AddParagraph(""), line, false, fontSize)
			}
		}
	}

	return doc.SaveTo(outputPath)
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	r := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		r.Bold(true)
	}
}
