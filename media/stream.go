package media

import (
	"fmt"
	"os"

	mp4 "github.com/abema/go-mp4"
)

// MP4Inspector reads duration and frame size from the movie header boxes of
// an ISO BMFF container (MP4, and MOV after transcoding).
type MP4Inspector struct{}

func (MP4Inspector) Inspect(path string) (StreamInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	boxes, err := mp4.ExtractBoxesWithPayload(file, nil, []mp4.BoxPath{
		{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()},
		{mp4.BoxTypeMoov(), mp4.BoxTypeTrak(), mp4.BoxTypeTkhd()},
	})
	if err != nil {
		return StreamInfo{}, fmt.Errorf("error reading MP4 structure: %w", err)
	}

	var (
		info    StreamInfo
		hasMvhd bool
	)
	for _, box := range boxes {
		switch payload := box.Payload.(type) {
		case *mp4.Mvhd:
			if payload.Timescale == 0 {
				return StreamInfo{}, fmt.Errorf("mvhd timescale is zero")
			}
			info.Duration = float64(payload.GetDuration()) / float64(payload.Timescale)
			hasMvhd = true
		case *mp4.Tkhd:
			// Audio tracks carry a zero size; the first visual track wins.
			if info.Width == 0 && payload.Width > 0 && payload.Height > 0 {
				info.Width = int(payload.Width >> 16)
				info.Height = int(payload.Height >> 16)
			}
		}
	}
	if !hasMvhd {
		return StreamInfo{}, fmt.Errorf("mvhd box not found in %s", path)
	}
	return info, nil
}
