package species_card_render

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	jobrt "github.com/yungbote/aquasync-backend/internal/jobs/runtime"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/envutil"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	if p.cards == nil {
		jc.Fail("validate", fmt.Errorf("no card renderer configured"))
		return nil
	}

	jc.Progress("loading", 10, "Finding species without imagery")
	list, err := p.species.ListMissingImages(dbctx.Context{Ctx: jc.Ctx, Tx: jc.DB})
	if err != nil {
		jc.Fail("loading", fmt.Errorf("list species missing images: %w", err))
		return nil
	}
	total := len(list)
	if total == 0 {
		jc.Succeed("done", map[string]any{"total": 0, "rendered": 0, "failed": 0})
		return nil
	}

	var rendered, failed atomic.Int64

	// Progress ticks from the side so render goroutines never touch jc
	// concurrently.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(2 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-jc.Ctx.Done():
				return
			case <-stop:
				return
			case <-t.C:
				n := rendered.Load() + failed.Load()
				jc.Progress("rendering", 10+int(n*85/int64(total)), fmt.Sprintf("Rendered %d of %d cards", n, total))
			}
		}
	}()

	concurrency := envutil.Int("CARD_RENDER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	jc.Progress("rendering", 12, fmt.Sprintf("Rendering %d cards", total))

	g, gctx := errgroup.WithContext(jc.Ctx)
	g.SetLimit(concurrency)
	for i := range list {
		sp := list[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if renderErr := p.cards.RenderAndUploadCard(dbctx.Context{Ctx: gctx, Tx: jc.DB}, &sp); renderErr != nil {
				failed.Add(1)
				p.log.Warn("card render failed",
					"species_id", sp.ID,
					"name", sp.Name,
					"error", renderErr,
				)
				return nil
			}
			rendered.Add(1)
			return nil
		})
	}
	waitErr := g.Wait()
	close(stop)
	wg.Wait()
	if waitErr != nil {
		jc.Fail("rendering", waitErr)
		return nil
	}

	p.log.Info("card render sweep complete",
		"total", total,
		"rendered", rendered.Load(),
		"failed", failed.Load(),
	)
	jc.Succeed("done", map[string]any{
		"total":    total,
		"rendered": rendered.Load(),
		"failed":   failed.Load(),
	})
	return nil
}
