package filestore

import (
	"fmt"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
)

// Manager implements interfaces.StorageManager on the local filesystem.
type Manager struct {
	logger *common.Logger
	path   string

	userStore      *UserStore
	portfolioStore *PortfolioStore
	contentStore   *ContentStore
	supportStore   *SupportStore
	auditStore     *AuditStore
	configStore    *ConfigStore
}

// NewManager opens (creating if needed) a file store rooted at path.
func NewManager(logger *common.Logger, path string) (*Manager, error) {
	if path == "" {
		return nil, fmt.Errorf("file storage requires a data path")
	}

	var err error

	open := func(name string) *jsonDir {
		if err != nil {
			return nil
		}
		var d *jsonDir
		d, err = newJSONDir(path, name)
		return d
	}
	users := open("users")
	portfolios := open("portfolios")
	content := open("content")
	support := open("support")
	audit := open("audit")
	config := open("config")
	if err != nil {
		return nil, err
	}

	m := &Manager{
		logger:         logger,
		path:           path,
		userStore:      &UserStore{dir: users},
		portfolioStore: &PortfolioStore{dir: portfolios},
		contentStore:   &ContentStore{dir: content},
		supportStore:   &SupportStore{dir: support},
		auditStore:     &AuditStore{dir: audit},
		configStore:    &ConfigStore{dir: config},
	}

	logger.Debug().Str("path", path).Msg("File storage manager initialized")
	return m, nil
}

func (m *Manager) UserStore() interfaces.UserStore           { return m.userStore }
func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return m.portfolioStore }
func (m *Manager) ContentStore() interfaces.ContentStore     { return m.contentStore }
func (m *Manager) SupportStore() interfaces.SupportStore     { return m.supportStore }
func (m *Manager) AuditStore() interfaces.AuditStore         { return m.auditStore }
func (m *Manager) ConfigStore() interfaces.ConfigStore       { return m.configStore }

// Close is a no-op; every write is flushed when it returns.
func (m *Manager) Close() error { return nil }

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
