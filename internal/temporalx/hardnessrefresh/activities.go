package hardnessrefresh

import (
	"context"
	"fmt"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
)

type Activities struct {
	Log      *logger.Logger
	Hardness services.HardnessService
}

func (a *Activities) Refresh(ctx context.Context) error {
	if a == nil || a.Hardness == nil {
		return fmt.Errorf("hardnessrefresh: activity not configured")
	}
	return a.Hardness.RefreshAll(ctx)
}
