// Package generation runs the smart checklist pipeline: transcribe the audio
// brief when one is attached, prompt the text-generation model, extract the
// bracketed checklist, persist the project, then insert tasks concurrently.
// Steps up to and including the project insert are terminal on failure; task
// inserts after that are best-effort and never roll the project back.
package generation

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"checklistapp/contracts/mq"
	"checklistapp/internal/checklist"
	"checklistapp/internal/eventbus"
	"checklistapp/internal/model"
	"checklistapp/pkg/logger"
	"checklistapp/pkg/metrics"
	"checklistapp/pkg/trace"
)

// DefaultProjectName is used when no explicit name accompanies the request.
const DefaultProjectName = "Smart project"

const RoutingKeyProjectCreated = "project.created"

type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) (string, error)
}

type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) (string, error)
}

type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type Request struct {
	OwnerID       int
	Creator       string
	Name          string
	Period        string
	TeamType      string
	Description   string
	Technologies  []string
	Audio         io.Reader
	AudioFilename string
}

type FailedTask struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

type Result struct {
	ProjectID   string
	Checklist   []string
	Description string
	Failed      []FailedTask
}

type Service struct {
	transcriber Transcriber
	generator   Generator
	projects    ProjectStore
	tasks       TaskStore
	publisher   EventPublisher
	bus         eventbus.Bus
	logger      *zap.Logger
}

func NewService(
	transcriber Transcriber,
	generator Generator,
	projects ProjectStore,
	tasks TaskStore,
	publisher EventPublisher,
	bus eventbus.Bus,
	logger *zap.Logger,
) *Service {
	return &Service{
		transcriber: transcriber,
		generator:   generator,
		projects:    projects,
		tasks:       tasks,
		publisher:   publisher,
		bus:         bus,
		logger:      logger,
	}
}

// Generate runs the pipeline end to end. The returned Result is valid only
// when err is nil; partial task failures are reported in Result.Failed, not
// as an error.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	log := logger.WithTrace(ctx, s.logger)

	description := req.Description
	if req.Audio != nil {
		text, err := s.transcriber.Transcribe(ctx, req.Audio, req.AudioFilename)
		if err != nil {
			return nil, fmt.Errorf("failed to transcribe audio brief: %w", err)
		}
		if description != "" {
			description = description + " " + text
		} else {
			description = text
		}
	}

	prompt := buildPrompt(req.Technologies, req.Period, req.TeamType, description)
	generated, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	titles, err := checklist.ExtractChecklist(generated)
	if err != nil {
		log.Error("Generated text contains no usable checklist",
			zap.Int("text_length", len(generated)),
			zap.Error(err),
		)
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = DefaultProjectName
	}
	project := &model.Project{
		OwnerID:      req.OwnerID,
		Name:         name,
		Type:         "Full Stack",
		Technologies: req.Technologies,
		Period:       req.Period,
		TeamType:     req.TeamType,
		Description:  description,
		IsTeam:       strings.EqualFold(req.TeamType, "team"),
	}
	projectID, err := s.projects.Insert(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to persist project: %w", err)
	}

	failed := s.insertTasks(ctx, projectID, req.OwnerID, titles)

	metrics.IncrementChecklistGeneration("inference")
	s.announce(ctx, project, req.Creator, len(titles))

	log.Info("Smart checklist generated",
		zap.String("project_id", projectID),
		zap.Int("task_count", len(titles)),
		zap.Int("failed_count", len(failed)),
	)

	return &Result{
		ProjectID:   projectID,
		Checklist:   titles,
		Description: description,
		Failed:      failed,
	}, nil
}

// insertTasks fires one insert per title and collects the ones that failed.
// There is no rollback: a partially inserted checklist is still a usable
// project.
func (s *Service) insertTasks(ctx context.Context, projectID string, ownerID int, titles []string) []FailedTask {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []FailedTask
	)
	for _, title := range titles {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			task := &model.Task{
				ProjectID: projectID,
				OwnerID:   ownerID,
				Title:     title,
			}
			if _, err := s.tasks.Insert(ctx, task); err != nil {
				mu.Lock()
				failed = append(failed, FailedTask{Title: title, Error: err.Error()})
				mu.Unlock()
			}
		}(title)
	}
	wg.Wait()
	return failed
}

// announce fans the creation out to the notification worker and the dashboard
// signal bus. Both are best-effort; the project already exists.
func (s *Service) announce(ctx context.Context, project *model.Project, creator string, taskCount int) {
	log := logger.WithTrace(ctx, s.logger)

	if creator == "" {
		creator = "unknown"
	}
	payload := mq.ProjectCreatedPayload{
		ProjectID: project.ID,
		OwnerID:   project.OwnerID,
		Name:      project.Name,
		Creator:   creator,
		TaskCount: taskCount,
		TraceID:   trace.FromContext(ctx),
	}
	if err := s.publisher.Publish(RoutingKeyProjectCreated, payload); err != nil {
		log.Warn("Failed to publish project created event",
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
	}

	if err := s.bus.Signal(ctx, eventbus.KeyProjectCreated); err != nil {
		log.Warn("Failed to signal project created",
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
	}
}

func buildPrompt(technologies []string, period, teamType, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Generate a checklist as a JSON array of strings for a project with the following characteristics: technologies: %s, period: %s, team: %s",
		strings.Join(technologies, ", "), period, teamType,
	)
	if description != "" {
		fmt.Fprintf(&b, ", description: %s", description)
	}
	b.WriteString("\nChecklist:")
	return b.String()
}
