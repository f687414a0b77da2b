package wipe

import (
	"fmt"
)

// ErasureMethod определяет стандарт многопроходного затирания файла
type ErasureMethod int

const (
	// SimpleOverwrite один проход нулями
	SimpleOverwrite ErasureMethod = iota
	// Dod3Pass DoD 5220.22-M (3 прохода): нули, 0xFF, случайные данные
	Dod3Pass
	// Dod7Pass DoD 5220.22-M ECE (7 проходов): шесть фиксированных байтов, затем случайные данные
	Dod7Pass
	// Gutmann35Pass метод Гутмана (35 проходов): 34 детерминированных байта, затем случайные данные
	Gutmann35Pass
)

// Фиксированные байты проходов 0-5 для Dod7Pass, проход 6 - случайный
var dod7PassBytes = [6]byte{0x35, 0xCA, 0x97, 0x68, 0x92, 0x6D}

// Детерминированные байты проходов 0-33 для Gutmann35Pass, проход 34 - случайный.
// Классические паттерны Гутмана, сведённые к однобайтовым заполнителям:
// 0x55/0xAA, тройки 0x92 0x49 0x24 и 0x6D 0xB6 0xDB, лестница 0x00..0xFF.
var gutmannPassBytes = [34]byte{
	0x55, 0xAA, 0x92, 0x49, 0x24,
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
	0x92, 0x49, 0x24, 0x6D, 0xB6, 0xDB,
	0x55, 0xAA, 0x92, 0x49, 0x24, 0x6D, 0xB6,
}

// Methods возвращает все поддерживаемые методы в порядке возрастания стойкости
func Methods() []ErasureMethod {
	return []ErasureMethod{SimpleOverwrite, Dod3Pass, Dod7Pass, Gutmann35Pass}
}

// MethodByName разбирает имя метода из конфигурации или CLI
func MethodByName(name string) (ErasureMethod, error) {
	switch name {
	case "simple":
		return SimpleOverwrite, nil
	case "dod3":
		return Dod3Pass, nil
	case "dod7":
		return Dod7Pass, nil
	case "gutmann":
		return Gutmann35Pass, nil
	default:
		return 0, fmt.Errorf("неподдерживаемый метод затирания: %s", name)
	}
}

func (m ErasureMethod) String() string {
	switch m {
	case SimpleOverwrite:
		return "simple"
	case Dod3Pass:
		return "dod3"
	case Dod7Pass:
		return "dod7"
	case Gutmann35Pass:
		return "gutmann"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Description краткое описание метода для вывода пользователю
func (m ErasureMethod) Description() string {
	switch m {
	case SimpleOverwrite:
		return "Быстрая перезапись нулями (1 проход)"
	case Dod3Pass:
		return "DoD 5220.22-M: нули, 0xFF, случайные данные (3 прохода)"
	case Dod7Pass:
		return "DoD 5220.22-M ECE: фиксированные паттерны и случайные данные (7 проходов)"
	case Gutmann35Pass:
		return "Метод Гутмана: максимальная стойкость (35 проходов)"
	default:
		return "неизвестный метод"
	}
}

// PassCount возвращает количество проходов метода
func (m ErasureMethod) PassCount() int {
	switch m {
	case SimpleOverwrite:
		return 1
	case Dod3Pass:
		return 3
	case Dod7Pass:
		return 7
	case Gutmann35Pass:
		return 35
	default:
		panic(fmt.Sprintf("wipe: неизвестный метод затирания %d", int(m)))
	}
}

// Fill заполняет buf паттерном прохода pass. Для детерминированных проходов
// результат воспроизводим; случайные проходы берут байты из crypto/rand.
// Выход pass за пределы [0, PassCount) - ошибка программирования, panic.
func (m ErasureMethod) Fill(pass int, buf []byte) error {
	if pass < 0 || pass >= m.PassCount() {
		panic(fmt.Sprintf("wipe: недопустимый проход %d для метода %s", pass, m))
	}

	switch m {
	case SimpleOverwrite:
		FillBufferPattern(buf, 0x00)

	case Dod3Pass:
		switch pass {
		case 0:
			FillBufferPattern(buf, 0x00)
		case 1:
			FillBufferPattern(buf, 0xFF)
		case 2:
			return FillRandom(buf)
		}

	case Dod7Pass:
		if pass == len(dod7PassBytes) {
			return FillRandom(buf)
		}
		FillBufferPattern(buf, dod7PassBytes[pass])

	case Gutmann35Pass:
		if pass == len(gutmannPassBytes) {
			return FillRandom(buf)
		}
		FillBufferPattern(buf, gutmannPassBytes[pass])
	}

	return nil
}

// Pattern генерирует паттерн прохода указанной длины
func (m ErasureMethod) Pattern(pass int, size int) ([]byte, error) {
	buf := make([]byte, size)
	if err := m.Fill(pass, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
