package sanitizer

import "strings"

var (
	gmailDomains = map[string]bool{
		"gmail.com":      true,
		"googlemail.com": true,
	}
	plusSubaddressDomains = map[string]bool{
		"icloud.com":  true,
		"me.com":      true,
		"outlook.com": true,
		"hotmail.com": true,
		"live.com":    true,
	}
	dashSubaddressDomains = map[string]bool{
		"yahoo.com":      true,
		"ymail.com":      true,
		"rocketmail.com": true,
	}
	yandexDomains = map[string]bool{
		"yandex.ru":  true,
		"yandex.ua":  true,
		"yandex.kz":  true,
		"yandex.com": true,
		"yandex.by":  true,
		"ya.ru":      true,
	}
)

// NormalizeEmail lower-cases an address and applies provider canonicalization.
// It reports false when the input has no usable local part or domain.
func NormalizeEmail(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}

	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])

	switch {
	case gmailDomains[domain]:
		local = cutSubaddress(local, "+")
		local = strings.ReplaceAll(local, ".", "")
		domain = "gmail.com"
	case plusSubaddressDomains[domain]:
		local = cutSubaddress(local, "+")
	case dashSubaddressDomains[domain]:
		local = cutSubaddress(local, "-")
	case yandexDomains[domain]:
		domain = "yandex.ru"
	}

	if local == "" {
		return "", false
	}
	return local + "@" + domain, true
}

func cutSubaddress(local, sep string) string {
	before, _, _ := strings.Cut(local, sep)
	return before
}
