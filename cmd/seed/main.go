package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/db"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
)

type seedQuestion struct {
	TextBody       string   `yaml:"text_body"`
	Choice1        string   `yaml:"choice_1"`
	Choice2        string   `yaml:"choice_2"`
	Choice3        string   `yaml:"choice_3"`
	Choice4        string   `yaml:"choice_4"`
	TrueChoice     string   `yaml:"true_choice"`
	Answer         string   `yaml:"answer"`
	Direction      string   `yaml:"direction"`
	MinRequiredAge *uint    `yaml:"min_required_age"`
	Tags           []string `yaml:"tags"`
}

type seedFile struct {
	Questions []seedQuestion `yaml:"questions"`
}

// Question bank seeder: loads a YAML file through the regular import path so
// each run leaves an audit record with its per-line report.
func main() {
	path := flag.String("file", "seed/questions.yaml", "seed file")
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal("Read seed file failed", "file", *path, "error", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatal("Parse seed file failed", "file", *path, "error", err)
	}
	if len(seed.Questions) == 0 {
		log.Fatal("Seed file has no questions", "file", *path)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	conn := pg.DB()

	questionRepo := repos.NewQuestionRepo(conn, log)
	tagRepo := repos.NewTagRepo(conn, log)
	importRepo := repos.NewImportRunRepo(conn, log)
	questionService := services.NewQuestionService(conn, questionRepo, tagRepo, importRepo, log)

	ctx := context.Background()

	tagIDs, err := ensureTags(ctx, questionService, seed.Questions)
	if err != nil {
		log.Fatal("Tag setup failed", "error", err)
	}

	inputs := make([]services.QuestionInput, 0, len(seed.Questions))
	for _, q := range seed.Questions {
		input := services.QuestionInput{
			TextBody:       q.TextBody,
			Choice1:        q.Choice1,
			Choice2:        q.Choice2,
			Choice3:        q.Choice3,
			Choice4:        q.Choice4,
			TrueChoice:     q.TrueChoice,
			Answer:         q.Answer,
			Direction:      q.Direction,
			MinRequiredAge: q.MinRequiredAge,
		}
		for _, name := range q.Tags {
			if id, ok := tagIDs[name]; ok {
				input.TagIDs = append(input.TagIDs, id)
			}
		}
		inputs = append(inputs, input)
	}

	run, err := questionService.Import(ctx, *path, inputs)
	if err != nil {
		log.Fatal("Import failed", "error", err)
	}
	log.Info("Seed finished",
		"import_run_id", run.ID,
		"status", run.Status,
		"created", run.Created,
		"skipped", run.Skipped)
}

func ensureTags(ctx context.Context, svc services.QuestionService, questions []seedQuestion) (map[string]uint, error) {
	existing, err := svc.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(existing))
	for _, tag := range existing {
		ids[tag.Name] = tag.ID
	}

	for _, q := range questions {
		for _, name := range q.Tags {
			if _, ok := ids[name]; ok {
				continue
			}
			tag, err := svc.CreateTag(ctx, name, nil)
			if err != nil {
				return nil, err
			}
			ids[name] = tag.ID
		}
	}
	return ids, nil
}
