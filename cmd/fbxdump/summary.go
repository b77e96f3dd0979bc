package main

import (
	"io"

	"github.com/binzume/fbxreader/fbx"
	yaml "gopkg.in/yaml.v2"
)

type modelSummary struct {
	ID          int64      `yaml:"id"`
	Name        string     `yaml:"name"`
	Kind        string     `yaml:"kind"`
	Translation [3]float32 `yaml:"translation,flow"`
	Rotation    [3]float32 `yaml:"rotation,flow"`
	Scaling     [3]float32 `yaml:"scaling,flow"`
}

type stackSummary struct {
	Name       string `yaml:"name"`
	Layers     int    `yaml:"layers"`
	CurveNodes int    `yaml:"curveNodes"`
}

type summary struct {
	Version      uint32              `yaml:"version"`
	Creator      string              `yaml:"creator,omitempty"`
	CreationTime string              `yaml:"creationTime,omitempty"`
	Settings     *fbx.GlobalSettings `yaml:"settings,omitempty"`
	Models       []*modelSummary     `yaml:"models,omitempty"`
	Deformers    map[string]int      `yaml:"deformers,omitempty"`
	Animations   []*stackSummary     `yaml:"animations,omitempty"`
	Warnings     []string            `yaml:"warnings,omitempty"`
	Errors       []string            `yaml:"errors,omitempty"`
}

func newSummary(doc *fbx.Document) *summary {
	s := &summary{
		Version:      doc.Version,
		Creator:      doc.Creator(),
		CreationTime: doc.CreationTime(),
	}
	var errs fbx.Errors
	settings, err := doc.GlobalSettings()
	errs = errs.Append(err)
	if err == nil {
		s.Settings = settings
	}

	models, err := doc.Models()
	errs = errs.Append(err)
	for _, m := range models {
		ms := &modelSummary{ID: m.ID, Name: m.Name, Kind: m.Kind.String()}
		m.LclTranslation.ToArray(ms.Translation[:])
		m.LclRotation.ToArray(ms.Rotation[:])
		m.LclScaling.ToArray(ms.Scaling[:])
		s.Models = append(s.Models, ms)
	}

	deformers, err := doc.Deformers()
	errs = errs.Append(err)
	for _, d := range deformers {
		if s.Deformers == nil {
			s.Deformers = map[string]int{}
		}
		s.Deformers[d.Kind.String()]++
	}

	stacks, err := doc.AnimationStacks()
	errs = errs.Append(err)
	for _, st := range stacks {
		ss := &stackSummary{Name: st.Name, Layers: len(st.Layers)}
		for _, l := range st.Layers {
			ss.CurveNodes += len(l.CurveNodes)
		}
		s.Animations = append(s.Animations, ss)
	}

	for _, w := range doc.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	for _, e := range errs {
		s.Errors = append(s.Errors, e.Error())
	}
	return s
}

func writeSummary(w io.Writer, doc *fbx.Document) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(newSummary(doc))
}
