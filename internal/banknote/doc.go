// Package banknote implements the dispensing core of a cash machine: given the
// banknotes loaded into the machine, it assembles a requested amount from the
// fewest possible notes or reports that the amount cannot be dispensed.
package banknote
