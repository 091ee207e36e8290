package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	}
}

// perPageFactor: страница и её промежуточные буферы (серый, маска, warp-холст)
// занимают примерно столько байт на пиксель.
const perPageFactor = 16

// DefaultWorkers picks a worker count for pages of the given size: one per
// CPU, capped so the per-page buffers fit into available memory.
func DefaultWorkers(pageWidth, pageHeight int) int {
	workers := 1
	if n, err := cpu.Counts(true); err == nil && n > 1 {
		workers = n
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return workers
	}
	perPage := uint64(pageWidth) * uint64(pageHeight) * perPageFactor
	if perPage == 0 {
		return workers
	}
	if fit := int(vm.Available / perPage); fit < workers {
		workers = fit
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// FindLatestScan returns the most recent scan in dir (image or PDF).
func FindLatestScan(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	extensions := []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".webp", ".pdf"}
	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		isScan := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				isScan = true
				break
			}
		}
		if isScan {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено сканов", dir)
	}

	return latestFile, nil
}
