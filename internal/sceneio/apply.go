package sceneio

import (
	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/scene"
)

// Result summarizes a load.
type Result struct {
	Name     string
	Spawned  int
	Warnings error // dangling parents and similar non-fatal problems
}

// Apply replaces the scene contents with doc. doc must come from Parse so a
// bad document never reaches this point; everything here is infallible
// apart from per-entity warnings.
func Apply(doc *Document, sc *scene.Scene, assets *asset.Registry) Result {
	sc.Clear()
	sc.Settings = scene.Settings{
		Name:           doc.Metadata.Name,
		Environment:    doc.Environment,
		AmbientLight:   doc.AmbientLight,
		InputBindings:  component.CloneBindings(doc.InputBindings),
		PostProcessing: doc.PostProcessing,
		AudioBuses:     append([]component.AudioBus(nil), doc.AudioBuses...),
	}
	if sc.Settings.Name == "" {
		sc.Settings.Name = scene.DefaultSettings().Name
	}
	assets.Replace(assetList(doc.Assets))

	spawned, err := sc.SpawnSnapshots(rootsFirst(doc.Entities))
	return Result{Name: sc.Settings.Name, Spawned: len(spawned), Warnings: err}
}

// rootsFirst orders entities so that every root precedes any child. Relative
// order inside each group is kept.
func rootsFirst(in []scene.EntitySnapshot) []scene.EntitySnapshot {
	present := make(map[string]bool, len(in))
	for _, e := range in {
		present[e.ID] = true
	}
	out := make([]scene.EntitySnapshot, 0, len(in))
	for _, e := range in {
		if e.ParentID == "" || !present[e.ParentID] {
			out = append(out, e)
		}
	}
	for _, e := range in {
		if e.ParentID != "" && present[e.ParentID] {
			out = append(out, e)
		}
	}
	return out
}
