// Package buildpipeline orchestrates one translation run: load images,
// translate modules in caller order and write their outputs.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tliron/commonlog"

	"natsu/internal/backend/cpp"
	"natsu/internal/driver"
	"natsu/internal/layout"
	"natsu/internal/observ"
)

var logTranslate = commonlog.GetLogger("natsu.translate")

// CacheDirName is the cache directory created inside the output directory.
const CacheDirName = ".natsu-cache"

// TranslateRequest configures one run.
type TranslateRequest struct {
	// Inputs are translated in this order.
	Inputs []string
	// References are loaded into the closure but not translated.
	References []string
	OutputDir  string
	Target     layout.Target
	Jobs       int
	NoCache    bool
	// Translator identifies the translator build in cache keys.
	Translator string
	Progress   ProgressSink
	// Files are the progress names of Inputs; defaults to Inputs.
	Files []string
}

// ModuleResult describes one translated (or reused) module.
type ModuleResult struct {
	Module     string
	Image      string
	HeaderPath string
	SourcePath string
	Cached     bool
	Types      int
	Methods    int
	Strings    int
	Elapsed    time.Duration
}

// TranslateResult captures per-module outcomes and timings.
type TranslateResult struct {
	Modules []ModuleResult
	Timings Timings
	Timer   *observ.Timer
}

// Translate runs the whole pipeline. It stops at the first failing module;
// modules before it keep their outputs and the failing one writes nothing.
func Translate(ctx context.Context, req *TranslateRequest) (TranslateResult, error) {
	result := TranslateResult{Timer: observ.NewTimer()}
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, errors.New("missing translate request")
	}
	if len(req.Inputs) == 0 {
		return result, errors.New("no module images to translate")
	}
	if req.OutputDir == "" {
		return result, errors.New("missing output directory")
	}
	if req.Target.PtrSize == 0 {
		req.Target = layout.X86_64()
	}
	files := req.Files
	if len(files) != len(req.Inputs) {
		files = req.Inputs
	}
	emitQueued(req.Progress, files)

	emitStage(req.Progress, files, StageLoad, StatusWorking, nil, 0)
	loadStart := time.Now()
	phase := result.Timer.Begin("load")
	inputs, err := driver.LoadImages(ctx, req.Inputs, req.Jobs)
	var refs []*driver.Image
	if err == nil {
		refs, err = driver.LoadImages(ctx, req.References, req.Jobs)
	}
	if err != nil {
		result.Timer.End(phase, "failed")
		emitStage(req.Progress, files, StageLoad, StatusError, err, time.Since(loadStart))
		return result, err
	}
	result.Timer.End(phase, fmt.Sprintf("%d images", len(inputs)+len(refs)))
	result.Timings.Add(StageLoad, time.Since(loadStart))
	return translateLoaded(ctx, req, files, inputs, refs, result)
}

func translateLoaded(ctx context.Context, req *TranslateRequest, files []string, inputs, refs []*driver.Image, result TranslateResult) (TranslateResult, error) {
	cl, err := driver.Closure(inputs, refs)
	if err != nil {
		emitStage(req.Progress, files, StageLoad, StatusError, err, 0)
		return result, err
	}

	var cache *driver.OutputCache
	if !req.NoCache {
		cache, err = driver.OpenOutputCache(filepath.Join(req.OutputDir, CacheDirName))
		if err != nil {
			logTranslate.Warningf("output cache disabled: %v", err)
			cache = nil
		}
	}

	for i, img := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		file := files[i]
		name := img.Module.Name
		mr := ModuleResult{
			Module:     name,
			Image:      img.Path,
			HeaderPath: filepath.Join(req.OutputDir, name+".h"),
			SourcePath: filepath.Join(req.OutputDir, name+".cpp"),
		}
		key := driver.Key(img.Digest, driver.Dependencies(img, inputs, refs), req.Translator, req.Target.Name)
		if cache != nil && cache.Fresh(name, key, mr.HeaderPath, mr.SourcePath) {
			if payload, ok, _ := cache.Get(name); ok {
				mr.Types, mr.Methods, mr.Strings = payload.Types, payload.Methods, payload.Strings
			}
			mr.Cached = true
			logTranslate.Infof("%s: up to date (%s)", name, key.Short())
			emitFile(req.Progress, file, StageTranslate, StatusCached, nil, 0)
			result.Modules = append(result.Modules, mr)
			continue
		}

		emitFile(req.Progress, file, StageTranslate, StatusWorking, nil, 0)
		start := time.Now()
		phase := result.Timer.Begin("translate " + name)
		out, err := cpp.EmitModule(img.Module, cl, cpp.Options{Target: req.Target})
		if err != nil {
			result.Timer.End(phase, "failed")
			emitFile(req.Progress, file, StageTranslate, StatusError, err, time.Since(start))
			return result, fmt.Errorf("%s: %w", name, err)
		}
		result.Timer.End(phase, fmt.Sprintf("%d types, %d methods", out.Types, out.Methods))
		translated := time.Since(start)
		result.Timings.Add(StageTranslate, translated)

		emitFile(req.Progress, file, StageWrite, StatusWorking, nil, 0)
		writeStart := time.Now()
		if err := WriteOutput(req.OutputDir, out); err != nil {
			emitFile(req.Progress, file, StageWrite, StatusError, err, time.Since(writeStart))
			return result, fmt.Errorf("%s: %w", name, err)
		}
		result.Timings.Add(StageWrite, time.Since(writeStart))

		if cache != nil {
			err := cache.Put(&driver.CachePayload{
				Module:       name,
				Translator:   req.Translator,
				Key:          key,
				HeaderDigest: driver.DigestOf(out.Header),
				SourceDigest: driver.DigestOf(out.Source),
				Types:        out.Types,
				Methods:      out.Methods,
				Strings:      out.Strings,
			})
			if err != nil {
				logTranslate.Warningf("%s: cache entry not written: %v", name, err)
			}
		}
		mr.Types, mr.Methods, mr.Strings = out.Types, out.Methods, out.Strings
		mr.Elapsed = time.Since(start)
		logTranslate.Infof("%s: %d types, %d methods, %d strings in %s", name, out.Types, out.Methods, out.Strings, translated)
		emitFile(req.Progress, file, StageWrite, StatusDone, nil, mr.Elapsed)
		result.Modules = append(result.Modules, mr)
	}
	return result, nil
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}

func emitFile(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
