package entities

// WinningNumbers holds the three prize numbers of a draw.
// First is always 4 digits; Second and Third are 2 or 4 digits.
type WinningNumbers struct {
	First  string `json:"first_prize"`
	Second string `json:"second_prize"`
	Third  string `json:"third_prize"`
}

// Validate checks the format of all three prizes
func (w WinningNumbers) Validate() error {
	if !isDigits(w.First) || len(w.First) != 4 {
		return newWinningNumbersError("first_prize", "must be exactly 4 digits")
	}
	if !isDigits(w.Second) || (len(w.Second) != 2 && len(w.Second) != 4) {
		return newWinningNumbersError("second_prize", "must be 2 or 4 digits")
	}
	if !isDigits(w.Third) || (len(w.Third) != 2 && len(w.Third) != 4) {
		return newWinningNumbersError("third_prize", "must be 2 or 4 digits")
	}
	return nil
}

// ValidateFourDigits additionally requires the second and third prizes to be 4 digits
func (w WinningNumbers) ValidateFourDigits() error {
	if err := w.Validate(); err != nil {
		return err
	}
	if len(w.Second) != 4 {
		return newWinningNumbersError("second_prize", "must be exactly 4 digits")
	}
	if len(w.Third) != 4 {
		return newWinningNumbersError("third_prize", "must be exactly 4 digits")
	}
	return nil
}

// Prize returns the winning number for rank 1, 2 or 3
func (w WinningNumbers) Prize(rank int) string {
	switch rank {
	case 1:
		return w.First
	case 2:
		return w.Second
	case 3:
		return w.Third
	}
	return ""
}

// Pair returns the two-digit form of a prize: the prize itself when it has
// two digits, otherwise its last two digits.
func (w WinningNumbers) Pair(rank int) string {
	p := w.Prize(rank)
	if len(p) <= 2 {
		return p
	}
	return p[len(p)-2:]
}

// IsFourDigit reports whether the prize for rank has four digits
func (w WinningNumbers) IsFourDigit(rank int) bool {
	return len(w.Prize(rank)) == 4
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
