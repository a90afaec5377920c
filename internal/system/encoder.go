package system

import (
	"os/exec"
	"strings"
	"sync"
)

// Encoder describes an ffmpeg video encoder together with a container that
// can be written to a pipe and the media type of the result.
type Encoder struct {
	Name      string
	Container string
	MediaType string
}

var (
	H264Software = Encoder{Name: "libx264", Container: "matroska", MediaType: "video/x-matroska"}
	VP9          = Encoder{Name: "libvpx-vp9", Container: "webm", MediaType: "video/webm"}
)

var (
	encodersOnce sync.Once
	encodersList string
)

func listEncoders() string {
	encodersOnce.Do(func() {
		out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err == nil {
			encodersList = string(out)
		}
	})
	return encodersList
}

// BestEncoder picks an encoder for codec ("h264" or "vp9"). For h264 hardware
// encoders are preferred:
// 1. macOS (VideoToolbox)
// 2. NVIDIA (NVENC)
// 3. software (libx264)
func BestEncoder(codec string) Encoder {
	if strings.EqualFold(codec, "vp9") {
		return VP9
	}

	available := listEncoders()
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(available, name) {
			enc := H264Software
			enc.Name = name
			return enc
		}
	}
	return H264Software
}
