// Package app wires every service onto a shared set of stores and exposes
// the resulting Application as the single object cmd/opsd runs.
package app

import (
	"context"

	"github.com/divingclub/opscore/internal/app/services/competency"
	"github.com/divingclub/opscore/internal/app/services/linkledger"
	outingsvc "github.com/divingclub/opscore/internal/app/services/outing"
	overlaysvc "github.com/divingclub/opscore/internal/app/services/overlay"
	palanqueesvc "github.com/divingclub/opscore/internal/app/services/palanquee"
	"github.com/divingclub/opscore/internal/app/services/questionnaire"
	safetysheetsvc "github.com/divingclub/opscore/internal/app/services/safetysheet"
	"github.com/divingclub/opscore/internal/app/services/validation"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/internal/app/storage/memory"
	"github.com/divingclub/opscore/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil fields default to the
// shared in-memory implementation, which satisfies every store interface.
type Stores struct {
	Persons        storage.PersonStore
	Groups         storage.GroupStore
	Sessions       storage.SessionStore
	Outings        storage.OutingStore
	Questionnaires storage.QuestionnaireStore
	EmailJobs      storage.EmailJobStore
	Competency     storage.CompetencyStore
	Palanquees     storage.PalanqueeStore
	LevelTemplates storage.LevelTemplateStore
	DiveDirectors  storage.DiveDirectorStore
}

func (s *Stores) applyDefaults(mem *memory.Store) {
	if s == nil || mem == nil {
		return
	}
	if s.Persons == nil {
		s.Persons = mem
	}
	if s.Groups == nil {
		s.Groups = mem
	}
	if s.Sessions == nil {
		s.Sessions = mem
	}
	if s.Outings == nil {
		s.Outings = mem
	}
	if s.Questionnaires == nil {
		s.Questionnaires = mem
	}
	if s.EmailJobs == nil {
		s.EmailJobs = mem
	}
	if s.Competency == nil {
		s.Competency = mem
	}
	if s.Palanquees == nil {
		s.Palanquees = mem
	}
	if s.LevelTemplates == nil {
		s.LevelTemplates = mem
	}
	if s.DiveDirectors == nil {
		s.DiveDirectors = mem
	}
}

// Option customises application construction.
type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL sets the public base URL used to compose magic links. Defaults
// to "http://localhost:8080" when omitted.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// Application ties every domain service together over a shared set of
// stores.
type Application struct {
	log *logger.Logger

	Competency     *competency.Service
	Validation     *validation.Service
	Links          *linkledger.Service
	Palanquees     *palanqueesvc.Service
	SafetySheet    *safetysheetsvc.Service
	Overlay        *overlaysvc.Service
	Outings        *outingsvc.Service
	Questionnaires *questionnaire.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger, opts ...Option) (*Application, error) {
	cfg := options{baseURL: "http://localhost:8080"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	stores.applyDefaults(mem)

	competencyService := competency.New(stores.Competency, log)
	validationService := validation.New(stores.Competency, log)
	linksService := linkledger.New(stores.EmailJobs, cfg.baseURL, log)
	palanqueeService := palanqueesvc.New(stores.Palanquees, stores.Questionnaires, stores.Persons, log)
	safetySheetService := safetysheetsvc.New(stores.Palanquees, stores.Questionnaires, stores.Persons, log)
	overlayService := overlaysvc.New(stores.LevelTemplates, stores.Competency, stores.Persons, log)
	outingService := outingsvc.New(stores.Outings, stores.Sessions, stores.Palanquees, stores.DiveDirectors, log)
	questionnaireService := questionnaire.New(stores.Questionnaires, log)

	return &Application{
		log:            log,
		Competency:     competencyService,
		Validation:     validationService,
		Links:          linksService,
		Palanquees:     palanqueeService,
		SafetySheet:    safetySheetService,
		Overlay:        overlayService,
		Outings:        outingService,
		Questionnaires: questionnaireService,
	}, nil
}

// Start is a no-op: every service here is request-driven, with no
// background poller to bring up. It exists so cmd/opsd can manage the
// application through the same Start/Stop shape the rest of this codebase
// uses for services that do run background work.
func (a *Application) Start(ctx context.Context) error {
	return nil
}

// Stop is a no-op for the same reason Start is.
func (a *Application) Stop(ctx context.Context) error {
	return nil
}
