package scheduling

import (
	"errors"
	"fmt"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Grid сетка слотов фиксированного шага
type Grid struct {
	interval        int
	defaultDuration int
}

// NewGrid interval - шаг сетки в минутах, defaultDuration - длительность услуги без указанной длительности
func NewGrid(interval, defaultDuration int) (*Grid, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if defaultDuration <= 0 {
		return nil, fmt.Errorf("%w: default %d", ErrInvalidDuration, defaultDuration)
	}
	return &Grid{interval: interval, defaultDuration: defaultDuration}, nil
}

// Interval шаг сетки в минутах
func (g *Grid) Interval() int {
	return g.interval
}

// Generate слоты от открытия с шагом сетки, пока начало слота раньше закрытия.
// Последний слот может заканчиваться после закрытия, это отсекает проверка границы при бронировании.
func (g *Grid) Generate(open, closeTime types.TimeString) []types.TimeString {
	slots := make([]types.TimeString, 0)

	current := open
	for current.IsBefore(closeTime) {
		slots = append(slots, current)

		next, err := current.AddMinutes(g.interval)
		if err != nil {
			break
		}
		current = next
	}

	return slots
}

// Filter помечает слоты, начало которых попадает в какой-либо блок, недоступными
func (g *Grid) Filter(slots []types.TimeString, blocks []*domain.ScheduleBlock) []domain.Slot {
	result := make([]domain.Slot, len(slots))

	for i, slot := range slots {
		result[i] = domain.Slot{Time: slot, Available: true}
		for _, block := range blocks {
			if block.IsBlocked && block.Covers(slot) {
				result[i].Available = false
				break
			}
		}
	}

	return result
}

// IsAligned проверяет, что start лежит на сетке, начинающейся с open
func (g *Grid) IsAligned(open, start types.TimeString) bool {
	offset := start.Minutes() - open.Minutes()
	return start.Minutes() >= 0 && offset >= 0 && offset%g.interval == 0
}

// MergeAny объединяет доступность нескольких мастеров: слот свободен, если свободен хотя бы у одного.
// Все списки должны быть построены по одной сетке.
func MergeAny(perMaster ...[]domain.Slot) []domain.Slot {
	if len(perMaster) == 0 {
		return []domain.Slot{}
	}

	merged := make([]domain.Slot, len(perMaster[0]))
	copy(merged, perMaster[0])

	for _, slots := range perMaster[1:] {
		for i := range merged {
			if i < len(slots) && slots[i].Available {
				merged[i].Available = true
			}
		}
	}

	return merged
}

// MasterSlots доступность одного мастера на дату
type MasterSlots struct {
	MasterID int64         `json:"masterId"`
	Slots    []domain.Slot `json:"slots"`
}

// RunForAny ищет первого по порядку мастера, у которого свободны required слотов подряд со start.
// Объединенная доступность для этого не годится: подряд свободные слоты могут принадлежать разным мастерам.
func RunForAny(perMaster []MasterSlots, start types.TimeString, required int) ([]types.TimeString, int64, error) {
	lastErr := fmt.Errorf("%w: %s", ErrSlotNotFound, start)
	for _, ms := range perMaster {
		run, err := ContiguousRun(ms.Slots, start, required)
		if err == nil {
			return run, ms.MasterID, nil
		}
		if errors.Is(err, ErrNotEnoughSlots) {
			lastErr = err
		}
	}
	return nil, 0, lastErr
}

// RunStarts времена начала, с которых хотя бы один мастер вмещает required слотов подряд
func RunStarts(perMaster []MasterSlots, required int) []types.TimeString {
	starts := make([]types.TimeString, 0)
	if len(perMaster) == 0 || required <= 0 {
		return starts
	}
	for _, slot := range perMaster[0].Slots {
		if _, _, err := RunForAny(perMaster, slot.Time, required); err == nil {
			starts = append(starts, slot.Time)
		}
	}
	return starts
}

// MarkPast помечает недоступными слоты, начавшиеся раньше now
func MarkPast(slots []domain.Slot, now types.TimeString) {
	for i := range slots {
		if slots[i].Time.IsBefore(now) {
			slots[i].Available = false
		}
	}
}

// HasOverlap есть ли среди блоков пересекающийся с [start, end)
func HasOverlap(blocks []*domain.ScheduleBlock, start, end types.TimeString) bool {
	for _, block := range blocks {
		if block.IsBlocked && block.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// ContiguousRun возвращает required подряд идущих свободных слотов, начиная со start.
// Соседние элементы сетки соседние и по времени.
func ContiguousRun(slots []domain.Slot, start types.TimeString, required int) ([]types.TimeString, error) {
	startIdx := -1
	for i, slot := range slots {
		if slot.Time == start {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, start)
	}

	run := make([]types.TimeString, 0, required)
	for i := startIdx; i < startIdx+required; i++ {
		if i >= len(slots) || !slots[i].Available {
			return nil, ErrNotEnoughSlots
		}
		run = append(run, slots[i].Time)
	}

	return run, nil
}
