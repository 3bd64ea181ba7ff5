package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/rxlens/prescription-scanner/internal/chat"
	"github.com/rxlens/prescription-scanner/internal/common"
	"github.com/rxlens/prescription-scanner/internal/extract"
	"github.com/rxlens/prescription-scanner/internal/llm"
	"github.com/rxlens/prescription-scanner/internal/llm/openai"
	"github.com/rxlens/prescription-scanner/internal/pipeline"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "rxscan <prescription-image>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, err := loadImage(path)
	if err != nil {
		logger.Error("load image", "path", path, "error", err)
		os.Exit(1)
	}

	assistant := newAssistant(cfg, logger)
	proc := pipeline.NewProcessor(newExtractor(cfg, logger), assistant, logger)
	proc.OnStateChange(func(st pipeline.ProcessingState) {
		if st.Phase == pipeline.PhaseProcessing {
			fmt.Fprintln(os.Stderr, st.ProgressMessage)
		}
	})

	prescription, err := proc.Run(ctx, img)
	if err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("=== Explanation ===")
	fmt.Println(prescription.Explanation)
	fmt.Println()
	fmt.Println("=== Medications ===")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDOSAGE\tFREQUENCY\tINSTRUCTIONS")
	for _, m := range prescription.Medications {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, m.Dosage, m.Frequency, m.Instructions)
	}
	if err := tw.Flush(); err != nil {
		logger.Warn("flush medication table", "error", err)
	}

	session := chat.NewSession(prescription, assistant, logger)
	runChat(ctx, session)
}

// runChat drops into an interactive question loop against the scanned
// prescription. Empty input is ignored; "exit" or "quit" leaves.
func runChat(ctx context.Context, session *chat.Session) {
	fmt.Println()
	fmt.Println(chat.WelcomeMessage)
	fmt.Println(`Type a question, or "exit" to quit.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return
		}

		if err := session.Submit(ctx, line); err != nil {
			if errors.Is(err, chat.ErrBusy) {
				continue
			}
			fmt.Println(session.ErrorSignal())
			continue
		}
		msgs := session.Messages()
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			if !last.IsUser {
				fmt.Println(last.Content)
			}
		}
	}
}

func newExtractor(cfg *common.Config, logger *slog.Logger) extract.TextExtractor {
	if cfg.OCR.VisionEndpoint != "" {
		return extract.NewVisionExtractor(extract.VisionConfig{
			Endpoint: cfg.OCR.VisionEndpoint,
			APIKey:   cfg.OCR.VisionAPIKey,
			Timeout:  cfg.OCR.Timeout,
			Attempts: cfg.OCR.RetryAttempts,
			Backoff:  cfg.OCR.RetryDelay,
		}, logger)
	}
	return extract.NewTesseractExtractor(extract.TesseractConfig{
		Language:    cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)
}

func newAssistant(cfg *common.Config, logger *slog.Logger) llm.Assistant {
	if cfg.LLM.APIKey == "" {
		logger.Warn("no OPENAI_API_KEY set; using offline mock assistant")
		return llm.NewMockAssistant()
	}
	return openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
		Attempts:    cfg.LLM.RetryAttempts,
		Backoff:     cfg.LLM.RetryDelay,
	}, logger)
}

// loadImage reads the file and decodes its pixel dimensions. The bytes stay
// opaque to the pipeline.
func loadImage(path string) (*extract.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read image file")
	}
	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.WrapError(err, "decode image dimensions")
	}
	return &extract.Image{Data: data, Width: imgCfg.Width, Height: imgCfg.Height}, nil
}
