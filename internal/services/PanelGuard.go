package services

import (
	"citystate/internal/providers"
	"fmt"
)

// PanelFallbackMessage replaces the content of a panel that failed.
const PanelFallbackMessage = "This panel is unavailable right now."

type PanelResult struct {
	Panel   string `json:"panel"`
	OK      bool   `json:"ok"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Guard isolates a failing panel so the rest of the page keeps working.
type Guard struct {
	audit  AuditServiceInterface
	logger providers.Logger
}

func NewGuard(audit AuditServiceInterface, logger providers.Logger) *Guard {
	return &Guard{audit: audit, logger: logger}
}

// Render runs fn and returns its data. An error or panic yields the fallback
// message and a panel_failure audit entry.
func (g *Guard) Render(panel, actor string, fn func() (any, error)) (res PanelResult) {
	defer func() {
		if r := recover(); r != nil {
			res = g.fail(panel, actor, fmt.Errorf("panic: %v", r))
		}
	}()

	data, err := fn()
	if err != nil {
		return g.fail(panel, actor, err)
	}
	return PanelResult{Panel: panel, OK: true, Data: data}
}

func (g *Guard) fail(panel, actor string, err error) PanelResult {
	g.logger.Errorf(providers.TypeApp, "Panel %s failed: %s", panel, err)
	g.audit.Append(actor, "panel_failure", map[string]any{"panel": panel, "error": err.Error()})
	return PanelResult{Panel: panel, Message: PanelFallbackMessage}
}
