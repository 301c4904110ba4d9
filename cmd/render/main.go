// Command render plays scores offline and writes each one to a WAV file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"github.com/user-none/playtune/render"
	"github.com/user-none/playtune/scorefile"
)

func main() {
	var opts render.Flags
	opts.Register(flag.CommandLine)
	outDir := flag.String("o", ".", "directory to write WAV files to")
	limit := flag.Duration("limit", 10*time.Minute, "longest time to play a score that loops")
	jobs := flag.Int("j", runtime.NumCPU(), "scores to render at once")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("No scores given. Usage: render [flags] score...")
	}
	if *jobs < 1 {
		*jobs = 1
	}
	cfg, err := opts.Config(log.Default())
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	var (
		mu     sync.Mutex
		failed int
	)
	wg := sizedwaitgroup.New(*jobs)
	for _, path := range flag.Args() {
		wg.Add()
		go func(path string) {
			defer wg.Done()
			out := outputPath(*outDir, path)
			msg, err := renderFile(path, out, cfg, *limit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("%s: %v", path, err)
				failed++
				return
			}
			log.Print(msg)
		}(path)
	}
	wg.Wait()

	if failed > 0 {
		log.Fatalf("%d of %d scores failed", failed, flag.NArg())
	}
}

// outputPath names the WAV file for the score at path.
func outputPath(dir, path string) string {
	base := filepath.Base(path)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".wav")
}

// renderFile renders one score and returns a line describing the result.
func renderFile(path, out string, cfg render.Config, limit time.Duration) (string, error) {
	score, err := scorefile.Load(path)
	if err != nil {
		return "", err
	}
	res, err := render.Render(score, cfg, limit)
	if err != nil {
		return "", err
	}
	if err := render.SaveWAV(out, res); err != nil {
		return "", err
	}
	fi, err := os.Stat(out)
	if err != nil {
		return "", err
	}

	d := durafmt.Parse(res.Duration.Round(time.Second)).LimitFirstN(2)
	msg := fmt.Sprintf("%s -> %s (%s, %s)", path, out, d, humanize.Bytes(uint64(fi.Size())))
	if !res.Ended {
		msg += ", cut at limit"
	}
	return msg, nil
}
