package report

import (
	"fmt"
	"strings"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/inspection"
)

// ChecklistItem is one row of a per-frame checklist.
type ChecklistItem struct {
	Component  string  `json:"component"`
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// FrameChecklist is the ordered checklist of a single frame.
type FrameChecklist struct {
	Frame int             `json:"frame"`
	Items []ChecklistItem `json:"items"`
}

// FormatText renders the consolidated checklist as a plain-text report.
// Output is deterministic: identical checklists yield byte-identical text,
// with critical components before optional ones, both in registry order.
func FormatText(checklist *inspection.ConsolidatedChecklist) string {
	info := checklist.InspectionInfo
	summary := checklist.Summary

	var b strings.Builder
	line := strings.Repeat("=", 60)

	b.WriteString(line + "\n")
	b.WriteString("CHECKLIST DE VERIFICAÇÃO VISUAL\n")
	b.WriteString(line + "\n\n")

	fmt.Fprintf(&b, "Operador:          %s\n", info.OperatorName)
	fmt.Fprintf(&b, "Número da OP:      %s\n", info.OPNumber)
	fmt.Fprintf(&b, "Data/Hora:         %s\n", info.InspectionDate.Format("02/01/2006 15:04:05"))
	fmt.Fprintf(&b, "Arquivo:           %s\n", info.VideoFilename)
	fmt.Fprintf(&b, "Duração:           %.1fs\n", info.VideoDuration)
	fmt.Fprintf(&b, "Frames analisados: %d\n\n", info.TotalFrames)

	fmt.Fprintf(&b, "DECISÃO FINAL: %s\n", decisionLabel(summary.FinalDecision))
	fmt.Fprintf(&b, "SCORE GERAL:   %.1f%%\n\n", summary.OverallScore*100)

	b.WriteString("COMPONENTES CRÍTICOS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	writeComponentGroup(&b, checklist, true)

	b.WriteString("\nCOMPONENTES OPCIONAIS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	writeComponentGroup(&b, checklist, false)

	b.WriteString("\n" + line + "\n")
	return b.String()
}

func writeComponentGroup(b *strings.Builder, checklist *inspection.ConsolidatedChecklist, critical bool) {
	for _, spec := range component.Specs() {
		if spec.Critical != critical {
			continue
		}
		c := checklist.ComponentsAnalysis[spec.Name]

		mark := "[ ]"
		if c.FinalStatus == inspection.Detected {
			mark = "[x]"
		}
		fmt.Fprintf(b, "%s %-24s %-13s %d/%d frames (%.1f%%)  conf. média %.1f%%\n",
			mark, spec.Display, statusLabel(c.FinalStatus),
			c.DetectedInFrames, c.TotalFrames, c.DetectionRate*100,
			c.AverageConfidence*100)
	}
}

func decisionLabel(d inspection.Decision) string {
	switch d {
	case inspection.DecisionRelease:
		return "LIBERAR LACRE"
	case inspection.DecisionReject:
		return "REPROVADO"
	default:
		return "REVISAR EQUIPAMENTO"
	}
}

func statusLabel(s inspection.FinalStatus) string {
	if s == inspection.Detected {
		return "Detectado"
	}
	return "Não detectado"
}

// PerFrameChecklist returns one frame's components as an ordered checklist,
// in fixed registry order regardless of map iteration.
func PerFrameChecklist(frameIndex int, analysis inspection.FrameAnalysis) FrameChecklist {
	items := make([]ChecklistItem, 0, component.Count())
	for _, spec := range component.Specs() {
		det := analysis.Components[spec.Name]
		items = append(items, ChecklistItem{
			Component:  spec.Display,
			Detected:   det.Detected,
			Confidence: det.Confidence,
		})
	}
	return FrameChecklist{Frame: frameIndex, Items: items}
}
