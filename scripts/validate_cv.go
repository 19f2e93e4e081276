package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/config"
	applog "alfredoptarigan/cv-submission/internal/logger"
	"alfredoptarigan/cv-submission/internal/models"
	"alfredoptarigan/cv-submission/internal/services"
)

func main() {
	pdfPath := flag.String("pdf", "", "path to the CV (PDF)")
	fullName := flag.String("name", "", "full name from the form")
	email := flag.String("email", "", "email from the form")
	phone := flag.String("phone", "", "phone from the form")
	skills := flag.String("skills", "", "comma separated skills from the form")
	experience := flag.String("experience", "", "experience from the form")
	backend := flag.String("backend", "", "validator backend, overrides VALIDATOR_BACKEND")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "usage: validate_cv -pdf cv.pdf [-name ...] [-email ...] [-phone ...] [-skills ...] [-experience ...]")
		os.Exit(2)
	}

	cfg := config.Load()
	if *backend != "" {
		cfg.Validator.Backend = *backend
	}

	log := applog.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	content, err := services.NewPDFParserService().ExtractTextWithMetaData(*pdfPath)
	if err != nil {
		log.Fatal("❌ Failed to read CV", zap.String("path", *pdfPath), zap.Error(err))
	}
	log.Info("📄 CV extracted",
		zap.String("path", content.FilePath),
		zap.Int("pages", content.PageCount),
		zap.Int("characters", len(content.Text)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Validator.Timeout+5*time.Second)
	defer cancel()

	client, err := services.NewValidationClient(ctx, cfg.Validator, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize validation client", zap.Error(err))
	}

	req := models.SubmissionRequest{
		FullName:   *fullName,
		Email:      *email,
		Phone:      *phone,
		Skills:     *skills,
		Experience: *experience,
		PdfPath:    *pdfPath,
	}

	verdict, err := client.Validate(ctx, req, content.Text)
	if err != nil {
		log.Fatal("❌ Validation failed", zap.String("backend", client.Backend()), zap.Error(err))
	}

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		log.Fatal("❌ Failed to encode verdict", zap.Error(err))
	}
	fmt.Println(string(out))

	if !verdict.IsValid {
		os.Exit(1)
	}
}
