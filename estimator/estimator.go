// Package estimator implements the closed-form peak VRAM model for
// Stable Diffusion v1.5 FP16 inference.
//
// The model combines three cost groups, all tracked in exact byte units:
//   - fixed cost: FP16 model weights plus framework overhead
//   - prompt cost: cross-attention K/V cache, linear in token count
//   - spatial cost: UNet activations and latent buffers, linear in the
//     number of latent pixels (H/8 x W/8)
//
// Conversion to gigabytes (decimal, 1 GB = 1e9 bytes) and rounding to two
// decimals happen only at the presentation boundary so the three output
// fields never accumulate rounding error against each other.
package estimator

import "math"

// Model constants for Stable Diffusion v1.5 FP16 inference.
// All values are in bytes unless noted.
const (
	// WeightsBytes is the FP16 UNet + VAE + CLIP weight footprint.
	WeightsBytes int64 = 2_132_400_000

	// OverheadBytes is the fixed framework/runtime overhead.
	OverheadBytes int64 = 500_000_000

	// PromptTokenBytes is the per-token cross-attention K/V cache cost.
	PromptTokenBytes int64 = 3_072

	// ActivationBytesPerLatent is the per-latent-pixel activation constant.
	ActivationBytesPerLatent int64 = 20_000

	// StandardAttnMultiplier is the activation multiplier when
	// memory-efficient attention is off.
	StandardAttnMultiplier = 1.25

	// MaxPromptTokens is the CLIP text encoder context window.
	MaxPromptTokens = 77

	// LatentDownsample is the UNet spatial downsampling factor.
	LatentDownsample = 8

	// bytesPerGB converts byte counts to decimal gigabytes for display.
	bytesPerGB = 1e9
)

// Attention mode labels returned in EstimateResult.
const (
	AttentionModeOptimized = "Optimized (Linear Scaling)"
	AttentionModeStandard  = "Standard"
)

// EstimateRequest holds the inputs for a single estimate.
// It is constructed per call and never mutated.
type EstimateRequest struct {
	// Height is the output image height in pixels (positive, multiple of 8).
	Height int `json:"height"`

	// Width is the output image width in pixels (positive, multiple of 8).
	Width int `json:"width"`

	// PromptLength is the tokenized prompt length (1-77).
	PromptLength int `json:"prompt_length"`

	// Optimization toggles the memory-efficient attention simulation.
	Optimization bool `json:"optimization"`
}

// EstimateResult is the computed VRAM breakdown, in gigabytes rounded to
// two decimals. PredictedVRAMGB always equals FixedCostGB + SpatialCostGB
// within 0.01 rounding tolerance.
type EstimateResult struct {
	PredictedVRAMGB float64 `json:"predicted_vram_gb"`
	AttentionMode   string  `json:"attention_mode"`
	FixedCostGB     float64 `json:"fixed_cost_gb"`
	SpatialCostGB   float64 `json:"spatial_cost_gb"`
}

// Validate checks the request against the input constraints, first failure
// wins. Returns nil when the request is computable.
//
// Order matters and is part of the contract:
//  1. height and width positive
//  2. height and width multiples of 8
//  3. prompt length within [1, 77]
func (r EstimateRequest) Validate() *ValidationError {
	if r.Height <= 0 || r.Width <= 0 {
		return newValidationError(MsgDimensionsNotPositive, "")
	}
	if r.Height%LatentDownsample != 0 || r.Width%LatentDownsample != 0 {
		return newValidationError(MsgDimensionsNotMultiple, DetailsMultipleOf8)
	}
	if r.PromptLength < 1 || r.PromptLength > MaxPromptTokens {
		return newValidationError(MsgPromptLengthOutOfRange, "")
	}
	return nil
}

// Estimate computes the peak VRAM estimate for a request.
//
// Given a valid request it returns a deterministic EstimateResult; given an
// invalid one it returns a *ValidationError. It performs no I/O, holds no
// state, and is safe for unlimited concurrent use.
func Estimate(req EstimateRequest) (EstimateResult, error) {
	if verr := req.Validate(); verr != nil {
		return EstimateResult{}, verr
	}

	// The latent products run in float64: validation bounds dimensions
	// below but not above, and the activation product can exceed int64.
	latentPixels := float64(req.Height/LatentDownsample) * float64(req.Width/LatentDownsample)

	attnMultiplier := StandardAttnMultiplier
	attnMode := AttentionModeStandard
	if req.Optimization {
		attnMultiplier = 1.0
		attnMode = AttentionModeOptimized
	}

	promptCache := PromptTokenBytes * int64(req.PromptLength)
	activation := latentPixels * float64(ActivationBytesPerLatent) * attnMultiplier
	// fp32 latent tensor, double buffered
	latentBuffer := latentPixels * 4 * 2

	fixedBytes := WeightsBytes + OverheadBytes
	spatialBytes := float64(promptCache) + latentBuffer + activation
	totalBytes := float64(fixedBytes) + spatialBytes

	return EstimateResult{
		PredictedVRAMGB: roundGB(totalBytes),
		AttentionMode:   attnMode,
		FixedCostGB:     roundGB(float64(fixedBytes)),
		SpatialCostGB:   roundGB(spatialBytes),
	}, nil
}

// roundGB converts a byte count to decimal gigabytes rounded to two decimals.
// This is the only place rounding happens.
func roundGB(bytes float64) float64 {
	return math.Round(bytes/bytesPerGB*100) / 100
}
