package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const clientPackage = "./app/client"

func newBuildCommand() *cobra.Command {
	var output string
	var optimize bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the browser client",
		Long:  `Compiles the WebAssembly client and copies wasm_exec.js next to it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output, optimize)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "dist", "Output directory")
	cmd.Flags().BoolVar(&optimize, "optimize", true, "Strip debug information")

	return cmd
}

func runBuild(output string, optimize bool) error {
	log.Println("🚀 Building famtree client...")

	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{"build", "-o", filepath.Join(output, "main.wasm")}
	if optimize {
		args = append(args, "-trimpath", "-ldflags=-s -w")
	}
	args = append(args, clientPackage)

	build := exec.Command("go", args...)
	build.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	if out, err := build.CombinedOutput(); err != nil {
		return fmt.Errorf("wasm build failed: %w\nOutput: %s", err, out)
	}

	log.Println("📄 Copying wasm_exec.js...")
	if err := copyWasmExec(output); err != nil {
		return fmt.Errorf("failed to copy wasm_exec.js: %w", err)
	}

	log.Println("\n📊 Build sizes:")
	reportBuildSizes(output)
	return nil
}

func copyWasmExec(output string) error {
	root, err := exec.Command("go", "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("failed to get GOROOT: %w", err)
	}
	goroot := strings.TrimSpace(string(root))

	// lib/wasm since Go 1.24, misc/wasm before
	var src *os.File
	for _, dir := range []string{"lib/wasm", "misc/wasm"} {
		if src, err = os.Open(filepath.Join(goroot, dir, "wasm_exec.js")); err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(output, "wasm_exec.js"))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func reportBuildSizes(output string) {
	wasmPath := filepath.Join(output, "main.wasm")
	if info, err := os.Stat(wasmPath); err == nil {
		log.Printf("  WASM:        %s", formatSize(info.Size()))
		log.Printf("  WASM (gzip): %s", formatSize(gzippedSize(wasmPath)))
	}

	var total int64
	filepath.Walk(output, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})

	log.Printf("  Total:       %s", formatSize(total))
	log.Printf("\n✨ Build output: %s", output)
}

func gzippedSize(path string) int64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	var n countingWriter
	gz := gzip.NewWriter(&n)
	io.Copy(gz, f)
	gz.Close()
	return int64(n)
}

type countingWriter int64

func (c *countingWriter) Write(p []byte) (int, error) {
	*c += countingWriter(len(p))
	return len(p), nil
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
