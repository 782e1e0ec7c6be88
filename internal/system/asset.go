package system

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/command"
	coresys "github.com/webforge/scenecore/internal/core/system"
)

// AssetSystem maintains the asset registry. Asset changes are not part of
// history. Phase 2 (Update).
type AssetSystem struct {
	deps *Deps
	log  *zap.Logger
}

func NewAssetSystem(deps *Deps) *AssetSystem {
	return &AssetSystem{deps: deps, log: deps.Log.With(zap.String("system", "asset"))}
}

func (s *AssetSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AssetSystem) Update(_ time.Duration) {
	d := s.deps
	changed := false
	for _, req := range d.Queue.Drain(command.DomainAsset) {
		switch r := req.(type) {
		case command.RegisterAsset:
			d.apply("register_asset", "", func() error {
				m, err := d.Assets.Register(asset.Metadata{
					ID:     r.ID,
					Kind:   r.Kind,
					Name:   r.Name,
					Size:   r.Size,
					Source: r.Source,
				})
				if err != nil {
					return err
				}
				s.log.Debug("asset registered", zap.String("asset", m.ID), zap.String("kind", m.Kind))
				changed = true
				return nil
			})
		case command.RemoveAsset:
			d.apply("remove_asset", "", func() error {
				if refs := asset.References(d.Scene, r.ID); len(refs) > 0 {
					return fmt.Errorf("%s: %w (%d)", r.ID, asset.ErrAssetInUse, len(refs))
				}
				if asset.InUse(d.Scene, r.ID) {
					return fmt.Errorf("%s: %w (environment)", r.ID, asset.ErrAssetInUse)
				}
				if err := d.Assets.Remove(r.ID); err != nil {
					return err
				}
				changed = true
				return nil
			})
		}
	}
	if changed {
		d.emitAssets()
	}
}
