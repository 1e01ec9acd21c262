// Command questup generates an exam from local reference documents and,
// with -quiz, administers it on the terminal and prints an analysis.
//
// The Gemini API key comes from QUESTUP_LLM_GEMINI_API_KEY (or config.yaml);
// without one the key is asked for on the terminal.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/questup-api/internal/config"
	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/platform/gemini"
	"github.com/phrazzld/questup-api/internal/platform/logger"
)

// maxFileBytes matches the inline payload limit of the generative endpoint.
const maxFileBytes = 20 << 20

type options struct {
	grade      string
	language   string
	count      int
	weakTopics string
	quiz       bool
	logLevel   string
	files      []string
}

func main() {
	var opts options
	flag.StringVar(&opts.grade, "grade", string(domain.GradeG6), "grade level (G1-G6, M1-M6)")
	flag.StringVar(&opts.language, "language", string(domain.LanguageThai), "exam language (Thai or English)")
	flag.IntVar(&opts.count, "count", 10, "number of questions (1-50)")
	flag.StringVar(&opts.weakTopics, "weak", "", "comma-separated topics to focus on")
	flag.BoolVar(&opts.quiz, "quiz", false, "answer the exam on the terminal and print an analysis")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: questup [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.files = flag.Args()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "questup: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(opts.files) == 0 {
		return domain.NewValidationError("files", "at least one reference file is required", nil)
	}

	level, ok := logger.ParseLevel(opts.logLevel)
	if !ok {
		return domain.NewValidationError("log-level", "must be debug, info, warn or error", nil)
	}
	log := logger.New(stderr, level)
	ctx = logger.WithLogger(ctx, log)

	cfg, err := config.LoadLLM()
	if err != nil {
		return err
	}

	files, err := loadReferenceFiles(opts.files)
	if err != nil {
		return err
	}

	// One reader serves both the key prompt and the quiz answers.
	in := bufio.NewReader(stdin)
	credentials := credential.NewChain(
		credential.NewStaticProvider(cfg.GeminiAPIKey),
		credential.NewDialogProvider(credential.NewTerminalSelector(in, stderr)),
	)

	generator, err := gemini.NewGenerator(log, *cfg, credentials)
	if err != nil {
		return err
	}

	params := domain.ExamParams{
		Files:      files,
		Grade:      domain.Grade(opts.grade),
		Language:   domain.Language(opts.language),
		Count:      opts.count,
		WeakTopics: splitTopics(opts.weakTopics),
	}

	log.Info("generating exam",
		slog.Int("files", len(files)),
		slog.String("grade", opts.grade),
		slog.Int("count", opts.count))

	questions, err := generator.GenerateExam(ctx, params)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return generation.ErrGenerationFailed
	}

	if !opts.quiz {
		return writeJSON(stdout, questions)
	}

	answers, err := runQuiz(in, stdout, questions)
	if err != nil {
		return err
	}

	analysis, err := generator.AnalyzeResults(ctx, questions, answers)
	if err != nil {
		return err
	}
	return writeJSON(stdout, analysis)
}

// loadReferenceFiles reads paths into reference files, detecting each
// file's mime type from its content.
func loadReferenceFiles(paths []string) ([]domain.ReferenceFile, error) {
	files := make([]domain.ReferenceFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		if len(data) == 0 {
			return nil, domain.NewValidationError("files", filepath.Base(path)+" is empty", nil)
		}
		if len(data) > maxFileBytes {
			return nil, domain.NewValidationError("files",
				fmt.Sprintf("%s exceeds %d MB", filepath.Base(path), maxFileBytes>>20), nil)
		}

		mimeType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
		files = append(files, domain.ReferenceFile{
			Name:     filepath.Base(path),
			Data:     base64.StdEncoding.EncodeToString(data),
			MimeType: mimeType,
		})
	}
	return files, nil
}

func splitTopics(raw string) []string {
	if raw == "" {
		return nil
	}
	return domain.CleanTopics(strings.Split(raw, ","))
}

// runQuiz asks each question on out and reads the chosen option number
// (1-based) from in. A blank line skips the question.
func runQuiz(in *bufio.Reader, out io.Writer, questions []domain.Question) ([]*int, error) {
	answers := make([]*int, len(questions))
	for i, q := range questions {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "   %d) %s\n", j+1, opt)
		}

		for {
			fmt.Fprint(out, "answer: ")
			line, err := in.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to read answer: %w", err)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			n, convErr := strconv.Atoi(line)
			if convErr == nil && n >= 1 && n <= len(q.Options) {
				choice := n - 1
				answers[i] = &choice
				break
			}
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(out, "enter a number from 1 to %d\n", len(q.Options))
		}

		if answers[i] != nil && q.IsCorrect(answers[i]) {
			fmt.Fprintln(out, "correct")
		} else if q.HasValidAnswer() {
			fmt.Fprintf(out, "answer: %d) %s\n", q.CorrectIndex+1, q.Options[q.CorrectIndex])
		}
		fmt.Fprintf(out, "%s\n", q.Explanation)
	}
	return answers, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// exitCode distinguishes caller mistakes and credential problems from
// endpoint failures.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return 2
	case errors.Is(err, generation.ErrAuthMissing), errors.Is(err, generation.ErrAuth):
		return 3
	case errors.Is(err, generation.ErrTransient):
		return 4
	default:
		return 1
	}
}
