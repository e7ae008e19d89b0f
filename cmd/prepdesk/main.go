package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rsharma/prepdesk/internal/auth"
	"github.com/rsharma/prepdesk/internal/handler"
	"github.com/rsharma/prepdesk/internal/model"
	"github.com/rsharma/prepdesk/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prepdesk",
		Short: "Exam practice platform backend",
	}

	serve := serveCmd()
	root.AddCommand(serve, seedCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `prepdesk --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "prepdesk.db", "SQLite database path")
	f.String("jwt-secret", "", "Token signing secret (or set PREPDESK_JWT_SECRET; required)")
	f.Int("bcrypt-cost", 0, "bcrypt cost factor (0 = library default)")
	f.String("admin-password", "", "Initial admin password (or set PREPDESK_ADMIN_PASSWORD)")
	f.String("admin-email", "admin@exam.com", "Initial admin email")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import exams with mock tests and questions from a JSON file",
		RunE:  runSeed,
	}
	f := cmd.Flags()
	f.String("db", "prepdesk.db", "SQLite database path")
	f.StringSliceP("exams", "e", nil, "Paths to exam JSON files (repeatable, required)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("exams")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export graded results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "prepdesk.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PREPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("prepdesk")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/prepdesk")
	v.AddConfigPath("/etc/prepdesk")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// The signing secret is process-wide and immutable; refuse to start
	// without one.
	authSvc, err := auth.New(v.GetString("jwt-secret"), v.GetInt("bcrypt-cost"))
	if err != nil {
		return fmt.Errorf("credential service: %w (set --jwt-secret or PREPDESK_JWT_SECRET)", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Seed default admin user if no users exist.
	if err := seedAdmin(db, authSvc, v.GetString("admin-email"), v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	h := handler.New(db, authSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server", "addr", addr, "db", v.GetString("db"))
	return http.ListenAndServe(addr, r)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return loadExams(db, v.GetStringSlice("exams"))
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.ExportAllResults()
	if err != nil {
		return fmt.Errorf("export results: %w", err)
	}

	export := model.ResultsExport{
		GeneratedAt: time.Now(),
		NumResults:  len(results),
		Results:     results,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}

// loadExams imports exam seed files. A file that was already imported
// is skipped; a file that changed since its import is skipped with a
// warning, since re-importing would duplicate content.
func loadExams(db *store.Store, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if storedHash == hash {
			slog.Info("exam file unchanged, skipping", "path", path)
			continue
		}
		if storedHash != "" {
			slog.Warn("exam file changed since last import, skipping to avoid duplicating content", "path", path)
			continue
		}

		var exams []model.ExamImport
		if err := json.Unmarshal(data, &exams); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		var testCount, questionCount int
		for _, ei := range exams {
			examID, err := db.InsertExam(model.Exam{Name: ei.Name, Description: ei.Description})
			if err != nil {
				return fmt.Errorf("insert exam from %s: %w", path, err)
			}
			for _, ti := range ei.MockTests {
				// Seeded content is assumed reviewed and goes live.
				mockID, err := db.CreateMockTest(model.MockTest{
					ExamID:          examID,
					Title:           ti.Title,
					DurationMinutes: ti.DurationMinutes,
					Difficulty:      ti.Difficulty,
					TotalMarks:      ti.TotalMarks,
					NegativeMarking: ti.NegativeMarking,
					Status:          model.StatusLive,
				})
				if err != nil {
					return fmt.Errorf("insert mock test from %s: %w", path, err)
				}
				testCount++
				for _, qi := range ti.Questions {
					_, err := db.CreateQuestion(model.Question{
						MockID:        mockID,
						Text:          qi.Text,
						Options:       qi.Options,
						CorrectAnswer: qi.CorrectAnswer,
						Marks:         qi.Marks,
						Status:        model.StatusLive,
					})
					if err != nil {
						return fmt.Errorf("insert question from %s: %w", path, err)
					}
					questionCount++
				}
			}
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported exams", "path", path, "exams", len(exams), "mock_tests", testCount, "questions", questionCount)
	}

	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func seedAdmin(db *store.Store, authSvc *auth.Service, email, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or PREPDESK_ADMIN_PASSWORD env var")
	}

	hash, err := authSvc.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "email", email)
	return nil
}
