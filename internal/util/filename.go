package util

import "strings"

// ExtractExt : возвращает расширение вместе с точкой (".pdf") или пустую строку.
// Имена вида "archive.tar.gz" дают ".gz" — так же, как path/filepath.Ext,
// но пустое имя и имя с точкой в конце не считаются расширением.
func ExtractExt(name string) string {
	if name == "" {
		return ""
	}

	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return ""
	}

	return name[idx:]
}
