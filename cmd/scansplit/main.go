package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/scansplit/internal/config"
	"github.com/ivlev/scansplit/internal/engine"
	"github.com/ivlev/scansplit/internal/source"
	"github.com/ivlev/scansplit/internal/system"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	defaults := config.Default()

	configPtr := flag.String("config", "", "Путь к YAML-конфигурации (флаги имеют приоритет)")
	inputPtr := flag.String("input", "", "Скан (PNG/JPEG/TIFF/PDF) или папка со сканами (по умолчанию: самый свежий файл в input/scans/)")
	outputPtr := flag.String("output", defaults.OutputDir, "Каталог для извлечённых фото")
	detectorPtr := flag.String("detector", defaults.Detector, "Стратегия поиска: contour, grid")
	dpiPtr := flag.Int("dpi", defaults.DPI, "Разрешение скана, DPI")
	minAreaPtr := flag.Float64("min-area", defaults.MinAreaRatio, "Минимальная площадь фото (доля страницы)")
	maxAreaPtr := flag.Float64("max-area", defaults.MaxAreaRatio, "Максимальная площадь фото (доля страницы)")
	minDimPtr := flag.Int("min-dim", defaults.MinDimensionPx, "Минимальная сторона фото в пикселях при 300 DPI")
	maxAspectPtr := flag.Float64("max-aspect", defaults.MaxAspectRatio, "Потолок соотношения сторон")
	backgroundPtr := flag.Int("background", defaults.BackgroundThreshold, "Порог яркости фона (0-255)")
	paddingPtr := flag.Int("padding", defaults.CropPaddingPx, "Отступ вокруг фото, пиксели")
	workersPtr := flag.Int("workers", 0, "Потоки (0 — по числу ядер и доступной памяти)")
	summaryPtr := flag.Bool("summary", defaults.WriteSummary, "Писать YAML-сводку рядом с фото")
	verbosePtr := flag.Bool("verbose", false, "Печатать диагностику пайплайна")

	flag.Parse()

	cfg := defaults
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
	}

	// Явно заданные флаги перекрывают конфигурацию из файла
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "detector":
			cfg.Detector = *detectorPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "min-area":
			cfg.MinAreaRatio = *minAreaPtr
		case "max-area":
			cfg.MaxAreaRatio = *maxAreaPtr
		case "min-dim":
			cfg.MinDimensionPx = *minDimPtr
		case "max-aspect":
			cfg.MaxAspectRatio = *maxAspectPtr
		case "background":
			cfg.BackgroundThreshold = *backgroundPtr
		case "padding":
			cfg.CropPaddingPx = *paddingPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "summary":
			cfg.WriteSummary = *summaryPtr
		case "verbose":
			cfg.Verbose = *verbosePtr
		}
	})

	if cfg.InputPath == "" {
		if err := os.MkdirAll("input/scans", 0755); err != nil {
			log.Fatalf("[-] Не удалось создать каталог input/scans: %v", err)
		}
		latest, err := system.FindLatestScan("input/scans")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите скан в input/scans/", err)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.InputPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	if cfg.Workers < 1 {
		// Оценка по A4 при настроенном DPI
		cfg.Workers = system.DefaultWorkers(cfg.DPI*827/100, cfg.DPI*1169/100)
	}

	var src source.Source
	var err error
	if strings.HasSuffix(strings.ToLower(cfg.InputPath), ".pdf") {
		src, err = source.NewFitzPDFSource(cfg.InputPath, cfg.DPI)
	} else {
		src, err = source.NewImageSource(cfg.InputPath)
	}
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	pageCount := src.PageCount()
	if pageCount == 0 {
		log.Fatalf("[-] Ошибка: в источнике нет сканов")
	}

	fmt.Println("--- [SCANSPLIT] ---")
	fmt.Printf("[*] Источник: %s | Страниц: %d\n", cfg.InputPath, pageCount)
	fmt.Printf("[*] Детектор: %s | DPI: %d | Потоки: %d\n", cfg.Detector, cfg.DPI, cfg.Workers)
	fmt.Println("-------------------")

	project := engine.NewProject(cfg, src)
	results, err := project.Run()
	if err != nil {
		log.Fatalf("[-] Ошибка извлечения: %v", err)
	}

	total := 0
	for _, res := range results {
		total += len(res.Photos)
		if cfg.Verbose {
			for _, line := range res.Diagnostics {
				fmt.Println("    " + line)
			}
		}
		if len(res.Warnings) > 0 {
			fmt.Printf("[!] %s: %v\n", filepath.Base(res.SourcePath), res.Warnings)
		}
	}

	fmt.Printf("[+++] Успех! Извлечено фото: %d | Каталог: %s\n", total, cfg.OutputDir)
}
