package animals

import (
	"encoding/json"
	"strings"
	"time"

	"animal-tracker/internal/platform/dates"
)

// SyncStatus marca el estado de un registro frente al store remoto.
// Vacío significa sincronizado.
type SyncStatus string

const (
	StatusSynced        SyncStatus = ""
	StatusPendingCreate SyncStatus = "pending_create"
	StatusPendingUpdate SyncStatus = "pending_update"
)

// Action es el tipo de mutación pendiente en la cola.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// QueueEntry es una mutación local pendiente de aplicar en el remoto.
type QueueEntry struct {
	Action Action `json:"action"`
	Data   Record `json:"data"`
}

// Insemination es un evento de inseminación asociado a un animal.
type Insemination struct {
	UUID       string     `json:"uuid,omitempty"`
	AnimalUUID string     `json:"animal_uuid,omitempty"`
	Date       *time.Time `json:"tohumlama_tarihi,omitempty"`
	Bull       string     `json:"sperma,omitempty"`
}

func (i Insemination) MarshalJSON() ([]byte, error) {
	type alias Insemination
	aux := struct {
		alias
		Date string `json:"tohumlama_tarihi,omitempty"`
	}{alias: alias(i)}
	if i.Date != nil {
		aux.Date = i.Date.Format(time.RFC3339)
	}
	return json.Marshal(aux)
}

func (i *Insemination) UnmarshalJSON(b []byte) error {
	type alias Insemination
	aux := struct {
		*alias
		Date json.RawMessage `json:"tohumlama_tarihi"`
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	i.Date = decodeDate(aux.Date)
	return nil
}

// Record es un animal registrado. El Synchronizer solo mira los campos
// reservados (UUID, OwnerID, LastModified, SyncStatus); el resto viaja
// tal cual, y Extra preserva campos que este cliente no conoce.
type Record struct {
	UUID         string     `json:"uuid"`
	OwnerID      string     `json:"owner_id,omitempty"`
	LastModified string     `json:"last_modified,omitempty"` // ISO-8601
	SyncStatus   SyncStatus `json:"sync_status,omitempty"`

	FarmTag  string `json:"isletme_kupesi,omitempty"`
	StateTag string `json:"devlet_kupesi,omitempty"`
	CollarNo string `json:"tasma_no,omitempty"`
	Breed    string `json:"irk,omitempty"`
	Note     string `json:"not,omitempty"`

	BirthDate     *time.Time     `json:"dogum_tarihi,omitempty"`
	Inseminations []Insemination `json:"tohumlamalar,omitempty"`

	// PregnancyConfirmed es la fecha en que se confirmó la gebelik
	// (columna Gebe_mi del registro veterinario).
	PregnancyConfirmed *time.Time `json:"gebeli_onay_tarihi,omitempty"`

	// Campos derivados por el enricher; se persisten para que la UI
	// los tenga disponibles sin recalcular.
	Class         string     `json:"sinif,omitempty"`
	ExpectedBirth *time.Time `json:"beklenen_dogum_tarihi,omitempty"`
	PregnancyText string     `json:"gebelik_durumu_metin,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// knownKeys son las claves que el struct modela; todo lo demás va a Extra.
var knownKeys = map[string]struct{}{
	"uuid": {}, "owner_id": {}, "last_modified": {}, "sync_status": {},
	"isletme_kupesi": {}, "devlet_kupesi": {}, "tasma_no": {}, "irk": {}, "not": {},
	"dogum_tarihi": {}, "tohumlamalar": {}, "gebeli_onay_tarihi": {},
	"sinif": {}, "beklenen_dogum_tarihi": {}, "gebelik_durumu_metin": {},
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+14)
	for k, v := range r.Extra {
		out[k] = v
	}

	out["uuid"] = r.UUID
	setIf(out, "owner_id", r.OwnerID)
	setIf(out, "last_modified", r.LastModified)
	setIf(out, "sync_status", string(r.SyncStatus))
	setIf(out, "isletme_kupesi", r.FarmTag)
	setIf(out, "devlet_kupesi", r.StateTag)
	setIf(out, "tasma_no", r.CollarNo)
	setIf(out, "irk", r.Breed)
	setIf(out, "not", r.Note)
	setIf(out, "sinif", r.Class)
	setIf(out, "gebelik_durumu_metin", r.PregnancyText)
	if r.BirthDate != nil {
		out["dogum_tarihi"] = r.BirthDate.Format(time.RFC3339)
	}
	if r.ExpectedBirth != nil {
		out["beklenen_dogum_tarihi"] = r.ExpectedBirth.Format(time.RFC3339)
	}
	if r.PregnancyConfirmed != nil {
		out["gebeli_onay_tarihi"] = r.PregnancyConfirmed.Format(time.RFC3339)
	}
	if len(r.Inseminations) > 0 {
		out["tohumlamalar"] = r.Inseminations
	}

	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = Record{}
	r.UUID = decodeString(raw["uuid"])
	r.OwnerID = decodeString(raw["owner_id"])
	r.LastModified = decodeString(raw["last_modified"])
	r.SyncStatus = SyncStatus(decodeString(raw["sync_status"]))
	r.FarmTag = decodeString(raw["isletme_kupesi"])
	r.StateTag = decodeString(raw["devlet_kupesi"])
	r.CollarNo = decodeString(raw["tasma_no"])
	r.Breed = decodeString(raw["irk"])
	r.Note = decodeString(raw["not"])
	r.Class = decodeString(raw["sinif"])
	r.PregnancyText = decodeString(raw["gebelik_durumu_metin"])
	r.BirthDate = decodeDate(raw["dogum_tarihi"])
	r.ExpectedBirth = decodeDate(raw["beklenen_dogum_tarihi"])
	r.PregnancyConfirmed = decodeDate(raw["gebeli_onay_tarihi"])

	if v, ok := raw["tohumlamalar"]; ok {
		// una lista malformada se tolera como vacía, no tumba la carga
		_ = json.Unmarshal(v, &r.Inseminations)
	}

	for k, v := range raw {
		if _, known := knownKeys[k]; known {
			continue
		}
		if r.Extra == nil {
			r.Extra = map[string]json.RawMessage{}
		}
		r.Extra[k] = v
	}

	return nil
}

// ModifiedTime parsea last_modified; cero si falta o está roto,
// que para el merge equivale a "lo más viejo posible".
func (r Record) ModifiedTime() time.Time {
	return dates.ParseTimestamp(r.LastModified)
}

// LastInsemination devuelve la fecha de inseminación más reciente.
func (r Record) LastInsemination() *time.Time {
	var last *time.Time
	for i := range r.Inseminations {
		d := r.Inseminations[i].Date
		if d == nil {
			continue
		}
		if last == nil || d.After(*last) {
			last = d
		}
	}
	return last
}

// DisplayName elige el identificador más útil para mostrar.
func (r Record) DisplayName() string {
	for _, s := range []string{r.FarmTag, r.StateTag, r.CollarNo} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return r.UUID
}

// Clone copia el registro incluyendo slices y Extra, para que el merge
// no comparta estructuras mutables entre el resultado y los stores.
func (r Record) Clone() Record {
	out := r
	if r.Inseminations != nil {
		out.Inseminations = make([]Insemination, len(r.Inseminations))
		copy(out.Inseminations, r.Inseminations)
	}
	if r.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func setIf(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func decodeString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

// decodeDate tolera timestamps ISO con o sin zona, fechas sueltas y basura.
// Lo que no se puede interpretar queda ausente, igual que en el cliente móvil.
func decodeDate(v json.RawMessage) *time.Time {
	s := decodeString(v)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
