package utils

import (
	"image"

	"github.com/disintegration/imaging"
)

// RotationCount is the number of fixed rotation variants per source image.
const RotationCount = 4

// RotationAngles are the fixed camera-compensation angles, in cascade order.
var RotationAngles = [RotationCount]int{0, 90, 180, 270}

// Rotate90 rotates the image 90 degrees counter-clockwise.
func Rotate90(img image.Image) image.Image { return imaging.Rotate90(img) }

// Rotate180 rotates the image 180 degrees.
func Rotate180(img image.Image) image.Image { return imaging.Rotate180(img) }

// Rotate270 rotates the image 270 degrees counter-clockwise.
func Rotate270(img image.Image) image.Image { return imaging.Rotate270(img) }

// RotationSet returns the four fixed reorientations of img, index i holding
// the RotationAngles[i] variant. Variant 0 is the source image itself.
// Rotations are lossless pixel reorderings; width and height swap for the
// 90 and 270 degree variants.
func RotationSet(img image.Image) [RotationCount]image.Image {
	return [RotationCount]image.Image{
		img,
		Rotate90(img),
		Rotate180(img),
		Rotate270(img),
	}
}
