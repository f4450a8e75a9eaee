package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/telemim/telemim-ops/internal/moves"
)

// moveSheetTemplate lays out the one-page order sheet handed to the crew.
var moveSheetTemplate = template.Must(template.New("movesheet").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Ordem de Mudança #{{.ID}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 2cm; color: #222; }
h1 { font-size: 20px; border-bottom: 2px solid #222; padding-bottom: 6px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ccc; font-size: 13px; }
th { width: 30%; color: #555; }
.status { display: inline-block; padding: 2px 10px; border: 1px solid #222; border-radius: 10px; font-size: 12px; }
.footer { margin-top: 28px; font-size: 11px; color: #777; }
</style>
</head>
<body>
<h1>Ordem de Mudança #{{.ID}}</h1>
<p><span class="status">{{.Status}}</span></p>
<table>
<tr><th>Morador</th><td>{{.ResidentName}}</td></tr>
<tr><th>Origem</th><td>{{.Origin}}</td></tr>
<tr><th>Destino</th><td>{{.Destination}}</td></tr>
<tr><th>Data</th><td>{{.MoveDate}} às {{.MoveTime}}</td></tr>
<tr><th>Cubagem</th><td>{{.Volume}} m³{{if .CorrectedVolume}} (contestada: {{.CorrectedVolume}} m³){{end}}</td></tr>
{{if .EstimatedCost}}<tr><th>Custo estimado</th><td>{{.EstimatedCost}}</td></tr>{{end}}
<tr><th>Motorista</th><td>{{.DriverConfirmation}}</td></tr>
<tr><th>Van</th><td>{{.VanConfirmation}}</td></tr>
{{if .Notes}}<tr><th>Observações</th><td>{{.Notes}}</td></tr>{{end}}
</table>
<p class="footer">Emitido em {{.IssuedAt}}</p>
</body>
</html>`))

type moveSheetData struct {
	ID                 int64
	Status             string
	ResidentName       string
	Origin             string
	Destination        string
	MoveDate           string
	MoveTime           string
	Volume             string
	CorrectedVolume    string
	EstimatedCost      string
	DriverConfirmation string
	VanConfirmation    string
	Notes              string
	IssuedAt           string
}

// BuildMoveSheet renders a move into the printable order sheet.
func BuildMoveSheet(m moves.Move) (string, error) {
	data := moveSheetData{
		ID:                 m.ID,
		Status:             string(m.Status),
		ResidentName:       m.ResidentName,
		Origin:             m.Origin,
		Destination:        m.Destination,
		MoveDate:           m.MoveDate.Format("02/01/2006"),
		MoveTime:           m.MoveTime,
		Volume:             fmt.Sprintf("%.2f", m.ItemsVolume),
		DriverConfirmation: confirmationLabel(m.DriverConfirmation),
		VanConfirmation:    confirmationLabel(m.VanConfirmation),
		IssuedAt:           time.Now().Format("02/01/2006 15:04"),
	}
	if m.CorrectedVolume != nil {
		data.CorrectedVolume = fmt.Sprintf("%.2f", *m.CorrectedVolume)
	}
	if m.EstimatedCostCents != nil {
		data.EstimatedCost = fmt.Sprintf("R$ %.2f", float64(*m.EstimatedCostCents)/100)
	}
	if m.Notes != nil {
		data.Notes = *m.Notes
	}

	var buf bytes.Buffer
	if err := moveSheetTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("report: render move sheet: %w", err)
	}
	return buf.String(), nil
}

func confirmationLabel(s moves.AssignmentStatus) string {
	switch s {
	case moves.AssignmentConfirmed:
		return "Confirmado"
	case moves.AssignmentDeclined:
		return "Recusado"
	default:
		return "Pendente"
	}
}
