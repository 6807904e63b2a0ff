package occamagent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexboden/occam-claw/src/config"
	"github.com/alexboden/occam-claw/src/occamagent/tools/tool_calendar"
	"github.com/alexboden/occam-claw/src/occamagent/tools/tool_datetime"
	"github.com/alexboden/occam-claw/src/occamagent/tools/tool_websearch"
	"github.com/alexboden/occam-claw/src/occamagent/tools/tool_webfetch"
	"github.com/alexboden/occam-claw/src/toolbox"
)

// BuildToolbox registers the assistant's tool collaborators. Calendar tools
// are only registered when the credentials file is present; the assistant
// degrades to the remaining tools otherwise.
func BuildToolbox(ctx context.Context, cfg *config.Config, loc *time.Location, logger *slog.Logger) (*toolbox.Toolbox, error) {
	tb := toolbox.New(cfg.Tools.Timeout.Value(), logger)

	datetimeTool, err := tool_datetime.New(loc)
	if err != nil {
		return nil, fmt.Errorf("building datetime tool: %w", err)
	}
	searchTool, err := tool_websearch.New()
	if err != nil {
		return nil, fmt.Errorf("building websearch tool: %w", err)
	}
	fetchTool, err := tool_webfetch.New()
	if err != nil {
		return nil, fmt.Errorf("building webfetch tool: %w", err)
	}
	for _, tool := range []toolbox.Tool{datetimeTool, searchTool, fetchTool} {
		if err := tb.Register(tool); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(cfg.Google.Credentials); err == nil {
		service, err := tool_calendar.NewService(ctx, cfg.Google.Credentials, cfg.Google.CalendarID)
		if err != nil {
			return nil, fmt.Errorf("building calendar service: %w", err)
		}
		calendarTools, err := service.Tools()
		if err != nil {
			return nil, fmt.Errorf("building calendar tools: %w", err)
		}
		for _, tool := range calendarTools {
			if err := tb.Register(tool); err != nil {
				return nil, err
			}
		}
	} else if logger != nil {
		logger.Warn("calendar credentials not found, calendar tools disabled", "path", cfg.Google.Credentials)
	}

	return tb, nil
}
