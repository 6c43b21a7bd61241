package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/goregular"

	"allergy-diary/internal/diary"
	"allergy-diary/internal/record"
)

type DocumentSender interface {
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

const fontFamily = "body"

// DefaultFontPaths are tried in order when no font is configured.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Service renders each completed diary entry as a one-page PDF and
// delivers it to a clinician's chat. It is used as a record.Sink.
type Service struct {
	sender       DocumentSender
	doctorChatID int64
	fontPaths    []string
	loc          *time.Location
}

func NewService(sender DocumentSender, doctorChatID int64, fontPaths []string, loc *time.Location) *Service {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sender:       sender,
		doctorChatID: doctorChatID,
		fontPaths:    fontPaths,
		loc:          loc,
	}
}

func (s *Service) Persist(ctx context.Context, rec diary.Record) error {
	data, err := s.Render(rec)
	if err != nil {
		return &record.SinkError{Sink: "report", Err: err}
	}

	fileName := fmt.Sprintf("allergy_log_%s.pdf", rec.RecordedAt.In(s.loc).Format("2006-01-02"))
	if err := s.sender.SendDocument(ctx, s.doctorChatID, data, fileName); err != nil {
		return &record.SinkError{Sink: "report", Err: err}
	}
	slog.Info("report: diary summary sent", "recordId", rec.ID.String(), "doctorChatId", s.doctorChatID)
	return nil
}

// Render produces the PDF bytes for rec.
func (s *Service) Render(rec diary.Record) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont(fontFamily, path); err == nil {
			fontLoaded = true
			break
		}
	}
	if !fontLoaded {
		// bundled Go Regular when no system font is installed
		if err := pdf.AddTTFFontData(fontFamily, goregular.TTF); err != nil {
			return nil, fmt.Errorf("failed to load font for PDF: %w", err)
		}
	}

	if err := pdf.SetFont(fontFamily, "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Allergy diary")
	pdf.Br(30)

	if err := pdf.SetFont(fontFamily, "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", rec.RecordedAt.In(s.loc).Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Chat: %d", rec.SessionID))
	pdf.Br(25)

	if err := pdf.SetFont(fontFamily, "", 14); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Severity (0-10)")
	pdf.Br(18)
	if err := pdf.SetFont(fontFamily, "", 11); err != nil {
		return nil, err
	}
	for _, slot := range diary.Slots {
		value := "-"
		if v, ok := rec.Answers.Score(slot); ok {
			value = strconv.Itoa(v)
		}
		pdf.Cell(nil, fmt.Sprintf("%s: %s", slot.Label(), value))
		pdf.Br(14)
	}
	pdf.Br(10)

	for _, line := range summaryLines(rec.Answers) {
		lines, err := pdf.SplitText(line, 500)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(14)
		}
		pdf.Br(4)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryLines(a diary.Answers) []string {
	medication := string(a.Medication)
	if medication == "" {
		medication = "-"
	}
	return []string{
		"Symptoms: " + orDash(strings.Join(a.Symptoms, ", ")),
		"Medication: " + medication,
		"Activities: " + orDash(strings.Join(a.Activities, ", ")),
		"Notes: " + orDash(a.Notes),
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
