package service

import (
	"context"
	"fmt"
	"time"

	"site-audit-be/internal/mapper"
	"site-audit-be/internal/pkg/logger"
	"site-audit-be/internal/repository/specification"
	"site-audit-be/internal/repository/unitofwork"
	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/survey"

	"github.com/patrickmn/go-cache"
)

const (
	schemaModule = "SCHEMA"
	questionsKey = "questions"
	sitesKey     = "sites"
)

// ISchemaService is the schema source of audit sessions. Question rows and
// sites are cached for their own TTL; failures are never cached.
type ISchemaService interface {
	audit.SchemaSource
	Invalidate()
}

type schemaService struct {
	uowFactory   unitofwork.RepositoryFactory
	cache        *cache.Cache
	questionsTTL time.Duration
	sitesTTL     time.Duration
	siteMapper   *mapper.SiteMapper
	logger       logger.ILogger
}

func NewSchemaService(
	uowFactory unitofwork.RepositoryFactory,
	questionsTTL, sitesTTL time.Duration,
	labelField string,
	log logger.ILogger,
) ISchemaService {
	return &schemaService{
		uowFactory:   uowFactory,
		cache:        cache.New(questionsTTL, 10*time.Minute),
		questionsTTL: questionsTTL,
		sitesTTL:     sitesTTL,
		siteMapper:   mapper.NewSiteMapper(labelField),
		logger:       log,
	}
}

func (s *schemaService) LoadQuestions(ctx context.Context) ([]survey.Question, error) {
	if x, found := s.cache.Get(questionsKey); found {
		return append([]survey.Question(nil), x.([]survey.Question)...), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.QuestionRepository().FindAll(ctx, specification.SheetOrder{})
	if err != nil {
		return nil, fmt.Errorf("reading question sheet: %w", err)
	}

	questions := make([]survey.Question, 0, len(rows))
	for _, r := range rows {
		if _, ok := mapper.ParseQuestionID(r.RawID); !ok {
			s.logger.Warn(schemaModule, "Non-numeric question id, sorted as 0", map[string]interface{}{
				"raw_id":  r.RawID,
				"section": r.Section,
			})
		}
		questions = append(questions, r.Question)
	}

	s.cache.Set(questionsKey, questions, s.questionsTTL)
	s.logger.Info(schemaModule, "Question sheet loaded", map[string]interface{}{"rows": len(questions)})
	return append([]survey.Question(nil), questions...), nil
}

func (s *schemaService) LoadSites(ctx context.Context) ([]survey.Project, error) {
	if x, found := s.cache.Get(sitesKey); found {
		return copyProjects(x.([]survey.Project)), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sites, err := uow.SiteRepository().FindAll(ctx, specification.SheetOrder{})
	if err != nil {
		return nil, fmt.Errorf("reading site sheet: %w", err)
	}

	projects := make([]survey.Project, 0, len(sites))
	for _, site := range sites {
		projects = append(projects, s.siteMapper.ToProject(site))
	}

	s.cache.Set(sitesKey, projects, s.sitesTTL)
	s.logger.Info(schemaModule, "Site sheet loaded", map[string]interface{}{"rows": len(projects)})
	return copyProjects(projects), nil
}

// Invalidate drops both cached sheets so the next load reads the store.
func (s *schemaService) Invalidate() {
	s.cache.Flush()
}

func copyProjects(in []survey.Project) []survey.Project {
	out := make([]survey.Project, len(in))
	for i, p := range in {
		cp := make(survey.Project, len(p))
		for k, v := range p {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
