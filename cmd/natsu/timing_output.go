package main

import (
	"fmt"
	"io"
	"time"

	"natsu/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	stages := []struct {
		stage buildpipeline.Stage
		verb  string
	}{
		{buildpipeline.StageLoad, "loaded"},
		{buildpipeline.StageTranslate, "translated"},
		{buildpipeline.StageWrite, "wrote"},
	}
	for _, s := range stages {
		if !timings.Has(s.stage) {
			continue
		}
		_, _ = fmt.Fprintf(out, "%s %.1f ms\n", s.verb, toMillis(timings.Duration(s.stage)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
