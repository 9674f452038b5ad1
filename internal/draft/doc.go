// Package draft holds the Python text produced for one unit before it is
// rendered.
//
// Назначение: буфер строк с глубиной блока и ролью (header/import/shim/code);
// отдельный import-блок с сортированной вставкой.
// Не делает: перевода конструкций и нормализации (engine, normalize).
// Зависимости: нет.
package draft
