// Command tryon stages a garment image and a personal photo from disk,
// submits them to the try-on backend and prints the result locator.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/language"

	"tryon-studio/internal/config"
	"tryon-studio/internal/form"
	"tryon-studio/internal/httpclient"
	"tryon-studio/internal/i18n"
	"tryon-studio/internal/tryon"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		garmentPath string
		photoPath   string
		description string
		baseURL     string
		outPath     string
		lang        string
		quiet       bool
	)
	flag.StringVar(&garmentPath, "garment", "", "Path to the garment image")
	flag.StringVar(&photoPath, "photo", "", "Path to your photo")
	flag.StringVar(&description, "desc", "", "Garment description (at most 200 characters)")
	flag.StringVar(&baseURL, "base-url", cfg.TryOnBaseURL, "Try-on backend base URL")
	flag.StringVar(&outPath, "o", "", "Write the result image to this file when the backend returns a data URL")
	flag.StringVar(&lang, "lang", "", "Message language (defaults to $LANG)")
	flag.BoolVar(&quiet, "quiet", false, "Do not show upload progress")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "  %s -garment suit.jpg -photo me.jpg -desc \"navy two-piece suit\"\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if lang == "" {
		lang = localeFromEnv()
	}
	tag := i18n.Match(lang)

	logger := config.NewLoggerTo(os.Stderr, cfg)

	var wrapBody func(io.Reader, int64) io.Reader
	if !quiet {
		wrapBody = func(body io.Reader, size int64) io.Reader {
			bar := progressbar.NewOptions64(size,
				progressbar.OptionSetDescription("uploading"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(10),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionFullWidth(),
			)
			return io.TeeReader(body, bar)
		}
	}

	client := tryon.New(tryon.Options{
		BaseURL: baseURL,
		HTTPClient: httpclient.New(httpclient.Options{
			PreferIPv4: cfg.PreferIPv4,
			Timeout:    cfg.HTTPTimeout,
		}),
		Logger:   logger,
		WrapBody: wrapBody,
	})

	ctrl := form.NewController(form.Options{Submitter: client, Logger: logger})

	if garmentPath != "" {
		img, err := loadImage(garmentPath)
		if err != nil {
			fail(tag, err)
		}
		ctrl.SelectGarment(img)
	}
	if photoPath != "" {
		img, err := loadImage(photoPath)
		if err != nil {
			fail(tag, err)
		}
		ctrl.SelectPhoto(img)
	}
	ctrl.SetDescription(description)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view, err := ctrl.Submit(ctx)
	if err != nil {
		for _, text := range i18n.NoticeTexts(tag, view.Notices) {
			fmt.Fprintln(os.Stderr, text)
		}
		logger.Debug("submit failed", "err", err)
		var verrs form.ValidationErrors
		if errors.As(err, &verrs) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}

	if outPath != "" {
		if err := writeResult(outPath, view.Result); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(outPath)
		return
	}
	fmt.Println(view.Result)
}

func loadImage(path string) (tryon.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tryon.Image{}, err
	}
	return tryon.NewImage(filepath.Base(path), data, "")
}

func fail(tag language.Tag, err error) {
	if errors.Is(err, tryon.ErrUnsupportedMedia) {
		fmt.Fprintf(os.Stderr, "%s (%v)\n", i18n.Text(tag, "notice.not_image"), err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

func writeResult(path, locator string) error {
	if !strings.HasPrefix(locator, "data:") {
		return fmt.Errorf("result is not inline image data: %s", locator)
	}
	comma := strings.IndexByte(locator, ',')
	if comma < 0 {
		return errors.New("invalid data url")
	}
	data, err := base64.StdEncoding.DecodeString(locator[comma+1:])
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// localeFromEnv turns a POSIX locale such as id_ID.UTF-8 into a language tag
// string.
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
