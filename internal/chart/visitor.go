package chart

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// pinnedVisualMap is a visual map restricted to one series. opts.VisualMap
// has no seriesIndex field.
type pinnedVisualMap struct {
	opts.VisualMap
	SeriesIndex int `json:"seriesIndex"`
}

// heatmapOnly pins every visual map to series 0 so the colour scale never
// recolours arrows or selection markers.
type heatmapOnly struct {
	charts.BaseConfigurationVisitor
}

func (heatmapOnly) VisitVisualMaps(visualMaps []opts.VisualMap) interface{} {
	out := make([]pinnedVisualMap, len(visualMaps))
	for i, vm := range visualMaps {
		out[i] = pinnedVisualMap{VisualMap: vm}
	}
	return out
}
