package main

import (
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/ivlev/scansplit/internal/testpage"
)

// Генератор синтетических сканов для ручной проверки пайплайна.
func main() {
	outputPtr := flag.String("output", "output/test_scan.png", "Путь к создаваемому PNG")
	layoutPtr := flag.String("layout", "quad", "Раскладка: blank, single, quad, rotated, overlap")
	flag.Parse()

	var photos []testpage.Photo
	switch *layoutPtr {
	case "blank":
	case "single":
		photos = []testpage.Photo{{
			Center: image.Pt(testpage.A4Width/2, testpage.A4Height/2),
			Width:  800, Height: 600, Shade: testpage.Gray(200),
		}}
	case "quad":
		photos = quadLayout(0)
	case "rotated":
		photos = quadLayout(2)
	case "overlap":
		photos = []testpage.Photo{
			{Center: image.Pt(1000, 1200), Width: 900, Height: 700, Shade: testpage.Gray(200)},
			{Center: image.Pt(1300, 1400), Width: 900, Height: 700, Shade: testpage.Gray(190)},
		}
	default:
		log.Fatalf("[-] Неизвестная раскладка: %s", *layoutPtr)
	}

	if !testpage.WritePage(*outputPtr, testpage.A4Width, testpage.A4Height, photos) {
		log.Fatalf("[-] Не удалось записать %s", *outputPtr)
	}
	fmt.Printf("[+++] Создан скан: %s (%s, фото: %d)\n", *outputPtr, *layoutPtr, len(photos))
}

// quadLayout раскладывает четыре фото 2x2 с полями и наклоном до maxTilt градусов.
func quadLayout(maxTilt float64) []testpage.Photo {
	tilts := []float64{maxTilt, -maxTilt / 2, -maxTilt, maxTilt / 2}
	shades := []uint8{200, 195, 205, 190}

	var photos []testpage.Photo
	for i := 0; i < 4; i++ {
		col := i % 2
		row := i / 2
		photos = append(photos, testpage.Photo{
			Center: image.Pt(
				testpage.A4Width/4+col*testpage.A4Width/2,
				testpage.A4Height/4+row*testpage.A4Height/2,
			),
			Width:  900,
			Height: 1200,
			// Портретные отпечатки, как на реальных листах 2x2
			AngleDegrees: tilts[i],
			Shade:        testpage.Gray(shades[i]),
		})
	}
	return photos
}
