//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binName = "hicstuff"
	mainPkg = "./cmd/hicstuff"
	distDir = "dist"
	image   = "koszullab/hicstuff"
)

var platforms = []struct{ os, arch string }{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "amd64"},
	{"darwin", "arm64"},
}

// Default target
var Default = Build

func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		return "dev"
	}

	return strings.TrimSpace(out)
}

func ldflags() string {
	return fmt.Sprintf("-s -w -X main.version=%s", version())
}

func installPath() string {
	if bin := os.Getenv("GOBIN"); bin != "" {
		return filepath.Join(bin, binName)
	}

	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil || gopath == "" {
		gopath = filepath.Join(os.Getenv("HOME"), "go")
	}

	return filepath.Join(gopath, "bin", binName)
}

// Install installs hicstuff with the version stamped in
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Uninstall removes the installed binary
func Uninstall() error {
	return sh.Rm(installPath())
}

// Clean removes build artifacts
func Clean() error {
	for _, path := range []string{distDir, "coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}

	return nil
}

// Build cross-compiles release archives into dist/
func Build() error {
	mg.Deps(Clean)

	for _, p := range platforms {
		dir := filepath.Join(distDir, fmt.Sprintf("%s_%s_%s", binName, p.os, p.arch))
		env := map[string]string{"GOOS": p.os, "GOARCH": p.arch, "CGO_ENABLED": "0"}

		err := sh.RunWithV(env, "go", "build", "-trimpath", "-ldflags", ldflags(), "-o", filepath.Join(dir, binName), mainPkg)
		if err != nil {
			return err
		}

		err = sh.RunV("tar", "-czf", dir+".tar.gz", "-C", distDir, filepath.Base(dir))
		if err != nil {
			return err
		}
	}

	return nil
}

// Deploy signs the archives and uploads them to the release of the current tag
func Deploy() error {
	mg.Deps(Build)

	archives, err := filepath.Glob(filepath.Join(distDir, "*.tar.gz"))
	if err != nil {
		return err
	}

	files := make([]string, 0, 2*len(archives))

	for _, archive := range archives {
		if err := sh.RunV("gpg", "--batch", "--yes", "--detach-sign", "--armor", archive); err != nil {
			return err
		}

		files = append(files, archive, archive+".asc")
	}

	return sh.RunV("gh", append([]string{"release", "upload", version(), "--clobber"}, files...)...)
}

// Apidoc writes the package documentation into dist/apidoc
func Apidoc() error {
	pkgs, err := sh.Output("go", "list", "./...")
	if err != nil {
		return err
	}

	dir := filepath.Join(distDir, "apidoc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, pkg := range strings.Fields(pkgs) {
		doc, err := sh.Output("go", "doc", "-all", pkg)
		if err != nil {
			return err
		}

		name := strings.ReplaceAll(strings.TrimPrefix(pkg, "github.com/nmendiboure/"), "/", "_") + ".txt"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc+"\n"), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// Test runs vet, then the tests and examples with coverage
func Test() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}

	args := []string{"test", "-coverprofile=coverage.out", "-covermode=atomic"}
	if runtime.GOOS != "windows" {
		args = append(args, "-race")
	}

	return sh.RunV("go", append(args, "./...")...)
}

// Dockerhub builds and pushes the container image tagged with the current version
func Dockerhub() error {
	tag := image + ":" + version()

	if err := sh.RunV("docker", "build", "--build-arg", "VERSION="+version(), "-t", tag, "-t", image+":latest", "."); err != nil {
		return err
	}

	if err := sh.RunV("docker", "push", tag); err != nil {
		return err
	}

	return sh.RunV("docker", "push", image+":latest")
}
