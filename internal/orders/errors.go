package orders

import "errors"

var (
	ErrEmptyCart         = errors.New("panier vide")
	ErrOrderNotFound     = errors.New("commande introuvable")
	ErrInvalidTransition = errors.New("changement de statut impossible")
	ErrInvalidStatus     = errors.New("statut inconnu")
	ErrInvalidAction     = errors.New("action invalide (approve ou reject)")
	ErrNoteRequired      = errors.New("un motif est obligatoire pour un refus")
	ErrNoteTooLong       = errors.New("note trop longue")

	ErrRefundNotFound  = errors.New("remboursement introuvable")
	ErrNotRefundable   = errors.New("cette commande n'est pas éligible au remboursement")
	ErrInvalidReason   = errors.New("le motif doit contenir entre 10 et 500 caractères")
	ErrInvalidAmount   = errors.New("montant de remboursement invalide")
	ErrRefundExists    = errors.New("une demande de remboursement existe déjà pour cette commande")
	ErrRefundProcessed = errors.New("remboursement déjà traité")
	ErrRefundApplied   = errors.New("commande déjà remboursée, la demande ne peut qu'être approuvée")
)
