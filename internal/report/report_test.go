package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/inspection"
)

func sampleChecklist(t *testing.T) *inspection.ConsolidatedChecklist {
	t.Helper()
	cfg := inspection.DefaultConfig()

	frames := make([]inspection.FrameAnalysis, 10)
	for i := range frames {
		dets := make(map[string]inspection.ComponentDetection, component.Count())
		for _, spec := range component.Specs() {
			dets[spec.Name] = inspection.ComponentDetection{
				Detected:   true,
				Confidence: 0.9,
				Critical:   spec.Critical,
			}
		}
		if i < 7 {
			dets["suportes"] = inspection.ComponentDetection{Detected: false, Confidence: 0.2}
		}
		analysis, err := inspection.ScoreFrame(dets, cfg)
		require.NoError(t, err)
		frames[i] = analysis
	}

	checklist, err := inspection.NewChecklist(frames, inspection.Info{
		OperatorName:   "João Pereira",
		OPNumber:       "OP-2025-007",
		VideoFilename:  "vistoria.mp4",
		VideoDuration:  45.2,
		InspectionDate: time.Date(2025, 3, 12, 9, 15, 0, 0, time.UTC),
	}, cfg)
	require.NoError(t, err)
	return checklist
}

func TestFormatTextDeterministic(t *testing.T) {
	checklist := sampleChecklist(t)
	first := FormatText(checklist)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, FormatText(checklist))
	}
}

func TestFormatTextContent(t *testing.T) {
	text := FormatText(sampleChecklist(t))

	require.Contains(t, text, "CHECKLIST DE VERIFICAÇÃO VISUAL")
	require.Contains(t, text, "Operador:          João Pereira")
	require.Contains(t, text, "Número da OP:      OP-2025-007")
	require.Contains(t, text, "Data/Hora:         12/03/2025 09:15:00")
	require.Contains(t, text, "Frames analisados: 10")
	require.Contains(t, text, "DECISÃO FINAL: LIBERAR LACRE")
	require.Contains(t, text, "[x] Câmeras")
	require.Contains(t, text, "[ ] Suportes")
	require.Contains(t, text, "Não detectado")
}

func TestFormatTextGroupOrdering(t *testing.T) {
	text := FormatText(sampleChecklist(t))

	criticalIdx := strings.Index(text, "COMPONENTES CRÍTICOS")
	optionalIdx := strings.Index(text, "COMPONENTES OPCIONAIS")
	require.Greater(t, criticalIdx, -1)
	require.Greater(t, optionalIdx, criticalIdx)

	// Registry order within the critical group.
	etiqueta := strings.Index(text, "Etiqueta visível")
	cameras := strings.Index(text, "Câmeras")
	require.Greater(t, etiqueta, criticalIdx)
	require.Greater(t, cameras, etiqueta)
	require.Less(t, cameras, optionalIdx)
}

func TestPerFrameChecklist(t *testing.T) {
	cfg := inspection.DefaultConfig()
	dets := make(map[string]inspection.ComponentDetection, component.Count())
	for _, spec := range component.Specs() {
		dets[spec.Name] = inspection.ComponentDetection{
			Detected:   spec.Critical,
			Confidence: 0.8,
			Critical:   spec.Critical,
		}
	}
	analysis, err := inspection.ScoreFrame(dets, cfg)
	require.NoError(t, err)

	cl := PerFrameChecklist(3, analysis)
	require.Equal(t, 3, cl.Frame)
	require.Len(t, cl.Items, component.Count())
	require.Equal(t, "Etiqueta visível", cl.Items[0].Component)
	require.True(t, cl.Items[0].Detected)
	require.Equal(t, "Suportes", cl.Items[len(cl.Items)-1].Component)
	require.False(t, cl.Items[len(cl.Items)-1].Detected)
}
