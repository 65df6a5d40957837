// Package sysinfo reads the few host facts used to prefill a report: the OS version string and
// the device model.
package sysinfo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	steamOSHolo = "SteamOS Holo"

	apuOLED = "AMD Custom APU 0932"
	apuLCD  = "AMD Custom APU 0405"

	DeviceOLED    = "Steam Deck OLED"
	DeviceLCD     = "Steam Deck LCD (256GB/512GB)"
	DeviceLCDeMMC = "Steam Deck LCD (64GB)"
)

// Info is a snapshot of the host facts.
type Info struct {
	OSName              string
	OSVersionID         string
	OSBuildID           string
	OSDisplayVersion    string
	Distribution        string
	DistributionVersion string
	CPUName             string
	// RootOnEMMC is set when / or /home is mounted from an mmcblk device.
	RootOnEMMC bool
}

type Provider interface {
	SystemInfo(ctx context.Context) (*Info, error)
}

// LinuxProvider reads /etc/os-release, /proc/cpuinfo and /proc/self/mounts below root.
type LinuxProvider struct {
	root string
}

func NewLinuxProvider() *LinuxProvider {
	return &LinuxProvider{root: "/"}
}

// NewLinuxProviderAt reads the same files relative to another root directory.
func NewLinuxProviderAt(root string) *LinuxProvider {
	return &LinuxProvider{root: root}
}

func (p *LinuxProvider) SystemInfo(_ context.Context) (*Info, error) {
	release, err := p.readOSRelease()
	if err != nil {
		return nil, err
	}

	info := &Info{
		OSName:              release["NAME"],
		OSVersionID:         release["VERSION_ID"],
		OSBuildID:           release["BUILD_ID"],
		OSDisplayVersion:    release["VERSION"],
		Distribution:        release["ID"],
		DistributionVersion: release["VERSION_ID"],
	}
	if release["ID"] == "steamos" && release["VERSION_CODENAME"] != "" {
		info.OSName = strings.TrimSpace(info.OSName + " " + cases.Title(language.English).String(release["VERSION_CODENAME"]))
	}

	// cpu and mount facts are best effort
	info.CPUName, _ = p.readCPUName()
	info.RootOnEMMC, _ = p.rootOnEMMC()
	return info, nil
}

func (p *LinuxProvider) open(path string) (*os.File, error) {
	return os.Open(filepath.Join(p.root, path))
}

func (p *LinuxProvider) readOSRelease() (map[string]string, error) {
	f, err := p.open("etc/os-release")
	if err != nil {
		f, err = p.open("usr/lib/os-release")
		if err != nil {
			return nil, fmt.Errorf("error reading os-release: %w", err)
		}
	}
	defer func() {
		_ = f.Close()
	}()
	return parseOSRelease(f), nil
}

func parseOSRelease(r io.Reader) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = unquote(v)
	}
	return out
}

func (p *LinuxProvider) readCPUName() (string, error) {
	f, err := p.open("proc/cpuinfo")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if ok && strings.TrimSpace(k) == "model name" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", sc.Err()
}

func (p *LinuxProvider) rootOnEMMC() (bool, error) {
	f, err := p.open("proc/self/mounts")
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()

	mounts := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parts := strings.Fields(sc.Text())
		if len(parts) >= 2 && strings.HasPrefix(parts[0], "/dev/") {
			if _, seen := mounts[parts[1]]; !seen {
				mounts[parts[1]] = parts[0]
			}
		}
	}
	for _, target := range []string{"/", "/home", "/home/deck"} {
		if src, ok := mounts[target]; ok {
			return strings.HasPrefix(filepath.Base(src), "mmcblk"), nil
		}
	}
	return false, sc.Err()
}

// InferOSVersionString renders the OS version the way reports record it: the bare version id on
// SteamOS Holo, "<name>_<version>[_<build>]" on other named systems, then whatever version fields
// are available.
func InferOSVersionString(info *Info) string {
	if info == nil {
		return ""
	}
	name := unquote(info.OSName)
	ver := unquote(info.OSVersionID)
	build := unquote(info.OSBuildID)

	if name != "" {
		if name == steamOSHolo {
			if ver != "" {
				return ver
			}
		} else if ver != "" {
			if build != "" {
				return name + "_" + ver + "_" + build
			}
			return name + "_" + ver
		}
	}

	if v := strings.TrimSpace(info.OSDisplayVersion); v != "" {
		return v
	}
	dist := strings.TrimSpace(info.Distribution)
	distVer := strings.TrimSpace(info.DistributionVersion)
	if dist != "" && distVer != "" {
		return dist + "_" + distVer
	}
	return dist
}

// InferDeviceLabel maps the APU model to a device label, or "" when the hardware is unknown.
func InferDeviceLabel(info *Info) string {
	if info == nil {
		return ""
	}
	switch {
	case strings.Contains(info.CPUName, apuOLED):
		return DeviceOLED
	case strings.Contains(info.CPUName, apuLCD):
		if info.RootOnEMMC {
			return DeviceLCDeMMC
		}
		return DeviceLCD
	default:
		return ""
	}
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}
