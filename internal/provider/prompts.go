package provider

import (
	"fmt"

	"github.com/JaimeStill/image-lab/internal/records"
)

const singleReferenceGuide = "Use the provided reference image as a style and composition guide. " +
	"Analyze the reference image's visual style, color palette, lighting, composition, and artistic elements, " +
	"then incorporate these characteristics into the new image you generate. " +
	"The reference image shows the aesthetic approach I want you to follow. Now create: %s"

const multiReferenceGuide = "I have provided %d reference images. " +
	"Analyze all reference images to understand the desired visual style, color palette, lighting, composition, and artistic approach. " +
	"Use these reference images as guides for creating the new image. " +
	"Combine the best visual elements from all references. Now create: %s"

const imageImprover = `You are an expert prompt engineer for AI image generators.
Analyze the following user prompt and expand it into a highly detailed, descriptive, and cinematic prompt that will produce high-quality results.
Focus on lighting, texture, composition, and artistic style.
Return ONLY the improved prompt text without any explanations or quotes.`

const videoImprover = `You are an expert prompt engineer for AI video generation (specifically for Google Veo).
Analyze the following user prompt and transform it into a highly detailed prompt optimized for Image-to-Video generation.
Focus on describing CAMERA MOVEMENT (pan, tilt, zoom), SUBJECT MOTION (what is moving and how), LIGHTING changes, and ATMOSPHERE.
Keep it cinematic and dynamic.
Return ONLY the improved prompt text without any explanations.`

// guidedPrompt prefixes prompt with reference guidance when references are attached.
func guidedPrompt(prompt string, references int) string {
	switch {
	case references == 1:
		return fmt.Sprintf(singleReferenceGuide, prompt)
	case references > 1:
		return fmt.Sprintf(multiReferenceGuide, references, prompt)
	default:
		return prompt
	}
}

func improverPrompt(text string, medium records.Medium) string {
	system := imageImprover
	if medium == records.MediumVideo {
		system = videoImprover
	}
	return fmt.Sprintf("%s\n\nUser prompt: %q", system, text)
}
