package splat

import (
	"errors"
	"fmt"
)

// SceneInfo is a JSON-friendly summary of a decoded scene file.
type SceneInfo struct {
	Gaussians   int        `json:"gaussians"`
	ImageWidth  int        `json:"image_width"`
	ImageHeight int        `json:"image_height"`
	Fx          float32    `json:"fx"`
	Fy          float32    `json:"fy"`
	Cx          float32    `json:"cx"`
	Cy          float32    `json:"cy"`
	Camera      [3]float32 `json:"camera_position"`
	Disparity   [2]float32 `json:"disparity"`
	ColorSpace  ColorSpace `json:"color_space"`
	Version     string     `json:"version"`
	Frames      int32      `json:"frames"`
}

// Info summarizes a decoded scene.
func (s *Scene) Info() (*SceneInfo, error) {
	if s == nil || s.Gaussians == nil {
		return nil, errors.New("scene is empty")
	}
	intr := s.Metadata.Intrinsics
	return &SceneInfo{
		Gaussians:   s.Gaussians.Len(),
		ImageWidth:  s.Metadata.ImageWidth,
		ImageHeight: s.Metadata.ImageHeight,
		Fx:          intr.Fx(),
		Fy:          intr.Fy(),
		Cx:          intr.Cx(),
		Cy:          intr.Cy(),
		Camera:      s.Metadata.Extrinsics.CameraPosition(),
		Disparity:   s.Disparity,
		ColorSpace:  s.ColorSpace,
		Version:     versionString(s.Version),
		Frames:      s.FrameCount,
	}, nil
}

func versionString(v [3]uint8) string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}
