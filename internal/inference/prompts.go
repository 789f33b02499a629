package inference

import "vinscan-service/internal/domain/vehicle"

// PromptSpec binds a scan mode to its model instruction and to the
// fields whose absence marks the extraction as failed. Adding a mode is
// a table entry, not a new branch.
type PromptSpec struct {
	instruction func(vehicle.BusinessType) string
	Required    []string
}

func (p PromptSpec) Instruction(bt vehicle.BusinessType) string {
	return p.instruction(bt)
}

var promptTable = map[vehicle.ScanMode]PromptSpec{
	vehicle.ModeRegistrationDocument: {
		instruction: func(bt vehicle.BusinessType) string {
			return "CARTE GRISE MAROC (" + fleetLabel(bt) + ") : Extrait le NIV (champ E), " +
				"la Marque (D.1), le Modèle (D.3) — utilise le nom commercial officiel du " +
				"constructeur, jamais un code de finition interne —, l'Année (B), et " +
				"l'Immat (A). Réponds UNIQUEMENT en JSON valide."
		},
		Required: []string{"vin", "make", "model"},
	},
	vehicle.ModeVIN: {
		instruction: func(bt vehicle.BusinessType) string {
			return `ANALYSE PHOTO CHÂSSIS/VÉHICULE (` + fleetLabel(bt) + `) :
1. Trouve impérativement le NIV (VIN) de 17 caractères gravé ou sur étiquette.
2. Identifie la MARQUE du constructeur (cherche le logo, ex: MG, Renault, Peugeot).
3. Identifie le MODÈLE commercial précis : distingue les modèles voisins d'une même marque, ne renvoie jamais un nom de plateforme ou de châssis générique.
4. Détermine l'ANNÉE si elle apparaît sur l'étiquette NIV.
Réponds UNIQUEMENT en JSON valide. Ne fournis aucun texte avant ou après.`
		},
		Required: []string{"vin"},
	},
}

func fleetLabel(bt vehicle.BusinessType) string {
	if bt == vehicle.BusinessNew {
		return "véhicule neuf"
	}
	return "véhicule d'occasion"
}

// PromptFor returns the spec for a mode. Unknown modes resolve to VIN
// mode, mirroring ParseScanMode's default.
func PromptFor(mode vehicle.ScanMode) PromptSpec {
	if p, ok := promptTable[mode]; ok {
		return p
	}
	return promptTable[vehicle.ModeVIN]
}
